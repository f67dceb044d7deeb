package db

import (
	"context"
	"fmt"
	"os"
	"strings"

	"gorm.io/gorm"
)

// ExecScript runs a DDL script verbatim. A blank script is a no-op.
func ExecScript(ctx context.Context, d *gorm.DB, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read schema %s: %w", path, err)
	}
	if strings.TrimSpace(string(script)) == "" {
		return nil
	}
	if err := d.WithContext(ctx).Exec(string(script)).Error; err != nil {
		return fmt.Errorf("exec schema %s: %w", path, err)
	}
	return nil
}
