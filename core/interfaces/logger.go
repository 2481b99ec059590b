package interfaces

// Logger is the structured logger core services write through.
// Fields are flat key/value pairs:
//
//	logger.Warn("Dropped catalog entry", map[string]interface{}{
//		"entry_id": entry.ID,
//		"reason":   "no_download_link",
//	})
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}
