// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/progress"
)

// progressBar renders a single go-pretty tracker on stderr.
type progressBar struct {
	pw      progress.Writer
	tracker *progress.Tracker
}

func newProgressBar(message string, total int) *progressBar {
	pw := progress.NewWriter()
	pw.SetOutputWriter(os.Stderr)
	pw.SetAutoStop(false)
	pw.SetTrackerLength(30)
	pw.SetUpdateFrequency(100 * time.Millisecond)
	pw.SetStyle(progress.StyleDefault)
	pw.Style().Visibility.ETA = true
	pw.Style().Visibility.Percentage = true

	tracker := &progress.Tracker{Message: message, Total: int64(total), Units: progress.UnitsDefault}
	pw.AppendTracker(tracker)
	go pw.Render()

	return &progressBar{pw: pw, tracker: tracker}
}

// Update matches batch.Options.OnProgress.
func (p *progressBar) Update(done, total int) {
	p.tracker.SetValue(int64(done))
}

// Stop marks the tracker done and waits for the final render.
func (p *progressBar) Stop() {
	p.tracker.MarkAsDone()
	p.pw.Stop()
	for p.pw.IsRenderInProgress() {
		time.Sleep(10 * time.Millisecond)
	}
}
