package load

import "github.com/pterm/pterm"

// Progress receives session progress updates. The terminal implementation
// renders a progress bar; JSON mode and tests use the no-op.
type Progress interface {
	Start(total int, title string)
	Advance(n int)
	Stop()
}

// NoopProgress discards all updates
type NoopProgress struct{}

func (NoopProgress) Start(int, string) {}
func (NoopProgress) Advance(int)       {}
func (NoopProgress) Stop()             {}

// TermProgress renders a pterm progress bar
type TermProgress struct {
	bar *pterm.ProgressbarPrinter
}

func (p *TermProgress) Start(total int, title string) {
	p.bar, _ = pterm.DefaultProgressbar.
		WithTotal(total).
		WithTitle(title).
		WithRemoveWhenDone(false).
		Start()
}

func (p *TermProgress) Advance(n int) {
	if p.bar != nil {
		p.bar.Add(n)
	}
}

func (p *TermProgress) Stop() {
	if p.bar != nil {
		p.bar.Stop()
	}
}
