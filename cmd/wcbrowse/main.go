// Command wcbrowse is a read-only text UI for inspecting a compiled
// word-code dump file: its entries, their instruction stream, and the
// string pool each entry's references point into.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/ashwinvis/zsh/config"
	"github.com/ashwinvis/zsh/dump"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s dumpfile\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "wcbrowse: %v\n", err)
		os.Exit(1)
	}

	entries, err := dump.Open(flag.Arg(0), cfg.Compile.MapThreshold)
	if err != nil {
		fmt.Fprintf(os.Stderr, "wcbrowse: %v\n", err)
		os.Exit(1)
	}

	b := newBrowser(entries)
	if err := b.App.SetRoot(b.Pages, true).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wcbrowse: %v\n", err)
		os.Exit(1)
	}
}

// browser is the TUI for stepping through a dump file's entries.
type browser struct {
	entries []dump.Entry

	App   *tview.Application
	Pages *tview.Pages

	MainLayout *tview.Flex
	EntryList  *tview.List
	WordsView  *tview.TextView
	StringsView *tview.TextView
	DetailView *tview.TextView
}

func newBrowser(entries []dump.Entry) *browser {
	b := &browser{
		entries: entries,
		App:     tview.NewApplication(),
	}
	b.initializeViews()
	b.buildLayout()
	b.setupKeyBindings()
	b.populateEntryList()
	return b
}

func (b *browser) initializeViews() {
	b.EntryList = tview.NewList().ShowSecondaryText(true)
	b.EntryList.SetBorder(true).SetTitle(" Entries ")

	b.WordsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	b.WordsView.SetBorder(true).SetTitle(" Words ")

	b.StringsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	b.StringsView.SetBorder(true).SetTitle(" String pool ")

	b.DetailView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	b.DetailView.SetBorder(true).SetTitle(" Summary ")
}

func (b *browser) buildLayout() {
	right := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(b.DetailView, 5, 0, false).
		AddItem(b.WordsView, 0, 3, false).
		AddItem(b.StringsView, 0, 2, false)

	mainContent := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(b.EntryList, 0, 1, true).
		AddItem(right, 0, 3, false)

	b.MainLayout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(mainContent, 0, 1, true)

	b.Pages = tview.NewPages().AddPage("main", b.MainLayout, true, true)
}

func (b *browser) setupKeyBindings() {
	b.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC, tcell.KeyEsc:
			b.App.Stop()
			return nil
		}
		return event
	})
}

func (b *browser) populateEntryList() {
	for i, e := range b.entries {
		idx := i
		entry := e
		b.EntryList.AddItem(entry.Name, fmt.Sprintf("%d words, %d bytes strs", entry.Prog.Len(), len(entry.Prog.Strs)), 0, func() {
			b.showEntry(idx)
		})
	}
	b.EntryList.SetChangedFunc(func(idx int, name, secondary string, shortcut rune) {
		b.showEntry(idx)
	})
	if len(b.entries) > 0 {
		b.showEntry(0)
	}
}

func (b *browser) showEntry(idx int) {
	if idx < 0 || idx >= len(b.entries) {
		return
	}
	e := b.entries[idx]
	fmt.Fprintf(b.DetailView.Clear(), "[yellow]%s[white]\nwords: %d  patterns: %d  strs: %d bytes",
		e.Name, e.Prog.Len(), e.Prog.NumPatterns(), len(e.Prog.Strs))

	wv := b.WordsView.Clear()
	for i, w := range e.Prog.Words {
		fmt.Fprintf(wv, "%4d  %-8s flags=%-3d data=%d\n", i, w.Kind(), w.Flags(), w.Data())
	}

	sv := b.StringsView.Clear()
	dumpStrings(sv, e.Prog.Strs)
}

// dumpStrings renders the NUL-delimited string pool as one line per entry.
func dumpStrings(w interface{ Write([]byte) (int, error) }, strs []byte) {
	start := 0
	for i, c := range strs {
		if c == 0 {
			fmt.Fprintf(w, "%4d  %q\n", start, string(strs[start:i]))
			start = i + 1
		}
	}
}
