package bot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/solstice-labs/odyssey-bot/pkg/history"
)

// Menu drives the interactive mode: one action per prompt, applied to every
// loaded wallet in order.
type Menu struct {
	engine *Engine
	in     *bufio.Reader
	out    io.Writer
}

// NewMenu creates an interactive menu over the given engine.
func NewMenu(engine *Engine, in io.Reader, out io.Writer) *Menu {
	return &Menu{
		engine: engine,
		in:     bufio.NewReader(in),
		out:    out,
	}
}

var (
	headline = color.New(color.FgCyan, color.Bold).SprintFunc()
	option   = color.New(color.FgYellow).SprintFunc()
	success  = color.New(color.FgGreen).SprintFunc()
	failure  = color.New(color.FgRed).SprintFunc()
)

// Run loops over the menu until the user exits or the context is cancelled.
func (m *Menu) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		m.printMenu()

		choice, err := m.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			m.report(m.engine.RunAll(ctx))
		case "2":
			m.forEachWallet(ctx, ActionCheckIn)
		case "3":
			m.forEachWallet(ctx, ActionMilestones)
		case "4":
			m.forEachWallet(ctx, ActionBoxes)
		case "5":
			m.showProfiles(ctx)
		case "6":
			m.showHistory()
		case "0", "q", "exit":
			fmt.Fprintln(m.out, "bye")
			return nil
		default:
			fmt.Fprintln(m.out, failure("unknown option"))
		}
	}
}

func (m *Menu) printMenu() {
	fmt.Fprintln(m.out)
	fmt.Fprintln(m.out, headline("=== Sonic Odyssey Bot ==="))
	fmt.Fprintf(m.out, "%s full daily flow (all wallets)\n", option("[1]"))
	fmt.Fprintf(m.out, "%s daily check-in\n", option("[2]"))
	fmt.Fprintf(m.out, "%s claim milestone rewards\n", option("[3]"))
	fmt.Fprintf(m.out, "%s open mystery boxes\n", option("[4]"))
	fmt.Fprintf(m.out, "%s show profiles\n", option("[5]"))
	fmt.Fprintf(m.out, "%s recent history\n", option("[6]"))
	fmt.Fprintf(m.out, "%s exit\n", option("[0]"))
	fmt.Fprint(m.out, "> ")
}

func (m *Menu) forEachWallet(ctx context.Context, action string) {
	for _, w := range m.engine.Wallets() {
		fmt.Fprintf(m.out, "%s %s\n", headline(w.Name), w.Address())
		if err := m.engine.RunAction(ctx, w, action); err != nil {
			fmt.Fprintln(m.out, failure(err.Error()))
			continue
		}
		fmt.Fprintln(m.out, success("done"))
	}
}

func (m *Menu) showProfiles(ctx context.Context) {
	for _, w := range m.engine.Wallets() {
		info, err := m.engine.Profile(ctx, w)
		if err != nil {
			fmt.Fprintf(m.out, "%s %s: %s\n", headline(w.Name), w.Address(), failure(err.Error()))
			continue
		}
		fmt.Fprintf(m.out, "%s %s  balance=%s SOL  rings=%d  boxes=%d\n",
			headline(w.Name), w.Address(),
			lamportsToSOL(info.WalletBalance), info.Ring, info.RingMonitor)
	}
}

func (m *Menu) showHistory() {
	for _, w := range m.engine.Wallets() {
		records, err := m.engine.Recent(w, 10)
		if err != nil {
			fmt.Fprintln(m.out, failure(err.Error()))
			continue
		}
		fmt.Fprintf(m.out, "%s %s\n", headline(w.Name), w.Address())
		if len(records) == 0 {
			fmt.Fprintln(m.out, "  (no history)")
			continue
		}
		for _, r := range records {
			line := fmt.Sprintf("  %s  %-15s %-8s %s",
				r.CreatedAt.Format("2006-01-02 15:04:05"), r.Action, r.Outcome, r.Detail)
			if r.Outcome == history.OutcomeFailed {
				fmt.Fprintln(m.out, failure(line))
			} else {
				fmt.Fprintln(m.out, line)
			}
		}
	}
}

func (m *Menu) report(err error) {
	if err != nil {
		fmt.Fprintln(m.out, failure(err.Error()))
		return
	}
	fmt.Fprintln(m.out, success("all wallets done"))
}
