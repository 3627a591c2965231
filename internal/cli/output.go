package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// printer writes the run lines, colouring the bracketed prefix of each.
type printer struct {
	w      io.Writer
	quiet  bool
	mutex  sync.Mutex
	red    func(a ...interface{}) string
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
}

func newPrinter(w io.Writer, quiet bool) *printer {
	return &printer{
		w:      w,
		quiet:  quiet,
		red:    color.New(color.FgRed).SprintFunc(),
		green:  color.New(color.FgGreen).SprintFunc(),
		yellow: color.New(color.FgYellow).SprintFunc(),
		cyan:   color.New(color.FgCyan).SprintFunc(),
	}
}

func (p *printer) line(s string) {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	prefix, rest, found := strings.Cut(s, "] ")
	if !found || !strings.HasPrefix(prefix, "[") {
		if !p.quiet {
			fmt.Fprintln(p.w, s)
		}
		return
	}
	prefix += "]"
	var paint func(a ...interface{}) string
	switch prefix {
	case "[fail]":
		paint = p.red
	case "[ok]":
		paint = p.green
	case "[done]":
		paint = p.yellow
	default:
		paint = p.cyan
	}
	if p.quiet && prefix != "[fail]" && prefix != "[done]" {
		return
	}
	fmt.Fprintln(p.w, paint(prefix)+" "+rest)
}

// bar is the optional progress bar of a run.
type bar struct {
	w       io.Writer
	enabled bool
	pb      *progressbar.ProgressBar
}

func newBar(w io.Writer, enabled bool) *bar {
	return &bar{w: w, enabled: enabled}
}

func (b *bar) set(current, total int) {
	if !b.enabled || total == 0 {
		return
	}
	if b.pb == nil {
		b.pb = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(b.w),
			progressbar.OptionSetDescription("Extracting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetPredictTime(true),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer: "█", SaucerHead: "█", SaucerPadding: "░",
				BarStart: "[", BarEnd: "]",
			}),
		)
	}
	_ = b.pb.Set(current)
}

// clear removes the bar so a line can be printed.
func (b *bar) clear() {
	if b.pb != nil {
		_ = b.pb.Clear()
	}
}

func (b *bar) finish() {
	if b.pb != nil {
		_ = b.pb.Finish()
	}
}

// isTerminal checks if the given file descriptor is a TTY.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
