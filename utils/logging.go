package utils

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
)

var (
	_, b, _, _ = runtime.Caller(0)

	// Root folder of this project
	Root = filepath.Join(filepath.Dir(b), "")
)

// SetLogger redirects the default slog logger to log/<fileName>.txt.
func SetLogger(fileName string, level slog.Level) error {
	file, err := openLogFile(filepath.Join(filepath.Dir(Root), "log", fileName+".txt"))
	if err != nil {
		return err
	}
	slog.SetDefault(NewLogger(file, level))
	slog.Info("log file created", "path", file.Name())
	return nil
}

func NewLogger(writer io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(writer, &slog.HandlerOptions{AddSource: true, Level: level}))
}

func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	logFile, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	return logFile, nil
}

func ExportToCsv(name string, records [][]string) error {
	dir := filepath.Join(filepath.Dir(Root), "log")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	file, err := os.Create(filepath.Join(dir, name+".csv"))
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	for _, value := range records {
		if err = writer.Write(value); err != nil {
			return err
		}
	}

	return err
}
