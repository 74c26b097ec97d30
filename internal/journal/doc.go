// Package journal keeps a small on-device record of boots and setup faults.
//
// The journal is diagnostic only. The node never reads it back to restore
// runtime state: the press counter and actuator state always start from zero
// after a reset. Rows live in the boots and faults tables created by the
// migrations package.
//
// Usage:
//
//	repo := journal.NewSQLiteRepository(db.DB)
//	boot, _ := repo.RecordBoot(ctx, journal.Boot{Node: "button_node", Strategy: "queued"})
//	n, _ := node.New(node.Options{FaultRecorder: journal.NewFaultRecorder(repo, "button_node", boot.ID)})
package journal
