package app

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Progress показывает ход обработки карточек страницы
type Progress struct {
	sp    *spinner.Spinner
	page  int
	total int
}

// NewProgress: при enabled=false все методы ничего не делают
func NewProgress(enabled bool, w io.Writer) *Progress {
	if !enabled {
		return &Progress{}
	}
	return &Progress{sp: spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))}
}

func (p *Progress) Start(page, total int) {
	if p.sp == nil {
		return
	}
	p.page, p.total = page, total
	p.setSuffix(0)
	p.sp.Start()
}

func (p *Progress) Update(done int) {
	if p.sp == nil {
		return
	}
	p.sp.Lock()
	p.setSuffix(done)
	p.sp.Unlock()
}

func (p *Progress) Stop() {
	if p.sp == nil {
		return
	}
	p.sp.Stop()
}

func (p *Progress) setSuffix(done int) {
	p.sp.Suffix = fmt.Sprintf(" page %d: %d/%d offers", p.page, done, p.total)
}
