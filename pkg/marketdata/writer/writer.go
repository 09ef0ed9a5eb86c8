// Package writer persists downloaded bars to local files the scanner reads back.
package writer

import (
	"github.com/rxtech-lab/argo-scanner/internal/types"
)

// BarWriter receives the bars of one download. Providers call Initialize once, Write
// per bar, Finalize on success, and Close in every case.
type BarWriter interface {
	Initialize() error
	Write(symbol string, bar types.Bar) error
	// Finalize flushes the bars and returns the path of the written file.
	Finalize() (outputPath string, err error)
	Close() error
	// OutputPath is the file Finalize writes to.
	OutputPath() string
}
