package store

// CommandRecord is one audited composite command sequence.
type CommandRecord struct {
	ID         int64  `json:"id"`
	SeqID      string `json:"seq_id"`
	Sequence   string `json:"sequence"`
	Serial     string `json:"serial"`
	Status     string `json:"status"`
	FailedStep string `json:"failed_step"`
	Error      string `json:"error"`
	CreatedAt  string `json:"created_at"`
	UpdatedAt  string `json:"updated_at"`
}

// InsertCommandStart records the start of a composite sequence.
func (db *DB) InsertCommandStart(seqID, sequence, serial string) error {
	_, err := db.Exec(`INSERT INTO command_log (seq_id, sequence, serial) VALUES (?, ?, ?)`,
		seqID, sequence, serial)
	return err
}

// MarkCommandCompleted marks a sequence as completed.
func (db *DB) MarkCommandCompleted(seqID string) error {
	_, err := db.Exec(`UPDATE command_log SET status = 'completed', updated_at = datetime('now','localtime') WHERE seq_id = ?`, seqID)
	return err
}

// MarkCommandFailed marks a sequence as failed at a step.
func (db *DB) MarkCommandFailed(seqID, failedStep, errText string) error {
	_, err := db.Exec(`UPDATE command_log SET status = 'failed', failed_step = ?, error = ?, updated_at = datetime('now','localtime') WHERE seq_id = ?`,
		failedStep, errText, seqID)
	return err
}

// ListCommands returns the most recent command sequences, newest first.
func (db *DB) ListCommands(limit int) ([]CommandRecord, error) {
	rows, err := db.Query(`SELECT id, seq_id, sequence, serial, status, failed_step, error, created_at, updated_at
		FROM command_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var cmds []CommandRecord
	for rows.Next() {
		var c CommandRecord
		if err := rows.Scan(&c.ID, &c.SeqID, &c.Sequence, &c.Serial, &c.Status, &c.FailedStep, &c.Error, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		cmds = append(cmds, c)
	}
	return cmds, rows.Err()
}
