package store

// RobotEvent is one audited telemetry event.
type RobotEvent struct {
	ID        int64  `json:"id"`
	Tag       string `json:"tag"`
	Topic     string `json:"topic"`
	Detail    string `json:"detail"`
	CreatedAt string `json:"created_at"`
}

// InsertRobotEvent records a telemetry event for later inspection.
func (db *DB) InsertRobotEvent(tag, topic, detail string) (int64, error) {
	res, err := db.Exec(`INSERT INTO robot_events (tag, topic, detail) VALUES (?, ?, ?)`, tag, topic, detail)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListRobotEvents returns the most recent events, newest first.
func (db *DB) ListRobotEvents(limit int) ([]RobotEvent, error) {
	rows, err := db.Query(`SELECT id, tag, topic, detail, created_at FROM robot_events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var events []RobotEvent
	for rows.Next() {
		var e RobotEvent
		if err := rows.Scan(&e.ID, &e.Tag, &e.Topic, &e.Detail, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// CountRobotEvents returns the number of audited events for a tag.
func (db *DB) CountRobotEvents(tag string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM robot_events WHERE tag = ?`, tag).Scan(&n)
	return n, err
}
