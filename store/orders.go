package store

// Order is one submitted customer order.
type Order struct {
	ID        int64  `json:"id"`
	OrderUUID string `json:"order_uuid"`
	Items     string `json:"items"` // JSON array of {name, quantity}
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// InsertOrder records a submitted order.
func (db *DB) InsertOrder(orderUUID, itemsJSON string) (int64, error) {
	res, err := db.Exec(`INSERT INTO orders (order_uuid, items) VALUES (?, ?)`, orderUUID, itemsJSON)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateOrderStatus changes an order's status.
func (db *DB) UpdateOrderStatus(orderUUID, status string) error {
	_, err := db.Exec(`UPDATE orders SET status = ? WHERE order_uuid = ?`, status, orderUUID)
	return err
}

// GetOrder fetches one order by UUID.
func (db *DB) GetOrder(orderUUID string) (*Order, error) {
	var o Order
	err := db.QueryRow(`SELECT id, order_uuid, items, status, created_at FROM orders WHERE order_uuid = ?`, orderUUID).
		Scan(&o.ID, &o.OrderUUID, &o.Items, &o.Status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns the most recent orders, newest first.
func (db *DB) ListOrders(limit int) ([]Order, error) {
	rows, err := db.Query(`SELECT id, order_uuid, items, status, created_at FROM orders ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.OrderUUID, &o.Items, &o.Status, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
