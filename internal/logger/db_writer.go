package logger

import (
	"context"
	"fmt"
	"time"

	"go-league/internal/config"
	"go-league/internal/database"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the worker
type LogEntry struct {
	Level      zapcore.Level
	Message    string
	Caller     string
	ReportType string
	OrgID      string
	Error      string
}

// EngineLog is the persisted form of a LogEntry.
type EngineLog struct {
	AppID        string    `bson:"app_id"`
	Level        string    `bson:"level"`
	LevelID      int       `bson:"level_id"`
	Message      string    `bson:"message"`
	Caller       string    `bson:"caller,omitempty"`
	ReportType   string    `bson:"report_type,omitempty"`
	OrgID        string    `bson:"org_id,omitempty"`
	Error        string    `bson:"error,omitempty"`
	CreatedOnUtc time.Time `bson:"created_on_utc"`
}

// DBLogWriter handles the async writing
type DBLogWriter struct {
	collection *mongo.Collection
	logChan    chan LogEntry
	appId      string
}

func NewDBLogWriter(mongodb *database.MongodbDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		collection: mongodb.DB.Collection("engine_logs"),
		logChan:    make(chan LogEntry, 1000),
		appId:      cfg.AppId,
	}

	go writer.processLogs()

	return writer
}

// AddLog never blocks the caller; entries are dropped when the buffer is full.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		record := EngineLog{
			AppID:        w.appId,
			Level:        entry.Level.String(),
			LevelID:      mapLevelToInt(entry.Level),
			Message:      entry.Message,
			Caller:       entry.Caller,
			ReportType:   entry.ReportType,
			OrgID:        entry.OrgID,
			Error:        entry.Error,
			CreatedOnUtc: time.Now().UTC(),
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, _ = w.collection.InsertOne(ctx, record)
		cancel()
	}
}

func mapLevelToInt(l zapcore.Level) int {
	switch l {
	case zapcore.DebugLevel:
		return 10
	case zapcore.InfoLevel:
		return 20
	case zapcore.WarnLevel:
		return 30
	case zapcore.ErrorLevel:
		return 40
	case zapcore.FatalLevel:
		return 50
	default:
		return 20
	}
}
