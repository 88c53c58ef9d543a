package sms

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// SpoolSender writes outbox files in the layout gammu-smsd watches: the
// device's SMS daemon owns actual transmission. File names follow the
// OUT<number>_<id>.txt convention; the body is the file content.
type SpoolSender struct {
	dir string
}

// NewSpoolSender creates the spool directory if needed.
func NewSpoolSender(dir string) (*SpoolSender, error) {
	if dir == "" {
		return nil, errors.New("sms spool directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create sms spool directory: %w", err)
	}
	return &SpoolSender{dir: dir}, nil
}

// Send spools one message. The file appears under its final name only once
// fully written, so the daemon never picks up a partial message.
func (s *SpoolSender) Send(ctx context.Context, to, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if to == "" {
		return errors.New("sms recipient number is required")
	}

	name := fmt.Sprintf("OUT%s_%s.txt", to, uuid.NewString())
	tmp := filepath.Join(s.dir, "."+name+".tmp")

	if err := os.WriteFile(tmp, []byte(body), 0o644); err != nil {
		return fmt.Errorf("failed to spool sms: %w", err)
	}
	if err := os.Rename(tmp, filepath.Join(s.dir, name)); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to spool sms: %w", err)
	}
	return nil
}

var _ Sender = (*SpoolSender)(nil)
