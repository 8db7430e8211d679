package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cory-johannsen/dungeon/internal/client"
	"github.com/cory-johannsen/dungeon/internal/game/character"
	"github.com/cory-johannsen/dungeon/internal/game/combat"
	"github.com/cory-johannsen/dungeon/internal/game/command"
	"github.com/cory-johannsen/dungeon/internal/game/session"
	"github.com/cory-johannsen/dungeon/internal/game/slots"
)

// errQuit ends the read loop.
var errQuit = errors.New("quit")

// repl reads one command per line and drives the game.
type repl struct {
	driver   *client.Driver
	slots    *slots.Manager
	commands *command.Registry
	out      io.Writer
}

func newRepl(driver *client.Driver, manager *slots.Manager, out io.Writer) *repl {
	return &repl{driver: driver, slots: manager, commands: command.DefaultRegistry(), out: out}
}

func (r *repl) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.out, format, args...)
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	r.printf("%s\n", r.commands.Help())
	r.status()
	sc := bufio.NewScanner(in)
	for {
		r.printf("> ")
		if !sc.Scan() {
			return sc.Err()
		}
		err := r.exec(ctx, sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			r.printf("error: %v\n", err)
		}
	}
}

// exec runs one input line. errQuit reports the quit command.
func (r *repl) exec(ctx context.Context, line string) error {
	cmd, p, err := r.commands.Lookup(line)
	if err != nil || cmd == nil {
		return err
	}
	game := r.driver.Game()

	switch cmd.Handler {
	case command.HandlerQuit:
		return errQuit
	case command.HandlerHelp:
		r.printf("%s", r.commands.Help())
	case command.HandlerNew:
		return r.newGame(p.Args[0], p.Args[1], p.Args[2], p.Args[3])
	case command.HandlerChoose:
		_, choices := game.Story()
		n, err := strconv.Atoi(p.Args[0])
		if err != nil || n < 1 || n > len(choices) {
			return fmt.Errorf("no choice %q", p.Args[0])
		}
		return r.choose(ctx, choices[n-1])
	case command.HandlerDo:
		return r.choose(ctx, p.RawArgs)
	case command.HandlerAttack:
		return r.act(ctx, combat.ActionAttack, "")
	case command.HandlerDefend:
		return r.act(ctx, combat.ActionDefend, "")
	case command.HandlerRun:
		return r.act(ctx, combat.ActionRun, "")
	case command.HandlerUse:
		if game.Mode() == session.ModeCombat {
			return r.act(ctx, combat.ActionUseItem, p.Args[0])
		}
		out, err := game.UseItem(p.Args[0])
		if err != nil {
			return err
		}
		r.printf("%s\n", out.Message)
	case command.HandlerStatus:
		r.status()
	case command.HandlerInventory:
		for _, it := range game.Inventory() {
			r.printf("  %-24s %s x%d\n", it.ID, it.Name, it.Quantity)
		}
	case command.HandlerQuests:
		log := game.Quests()
		for _, q := range log.Active {
			r.printf("  %s  %d%%\n", q.Title, q.Progress)
		}
		r.printf("  completed: %d\n", len(log.Completed))
	case command.HandlerTravel:
		if err := game.Travel(p.RawArgs); err != nil {
			return err
		}
		here, seen := game.Location()
		r.printf("You arrive at %s. (%d places discovered)\n", here, len(seen))
	case command.HandlerSlots:
		for _, s := range r.slots.List(ctx) {
			r.printf("  %-12s %-16s %s\n", s.ID, s.Name, s.Timestamp.Format("2006-01-02 15:04"))
		}
	case command.HandlerSave:
		if !r.slots.Save(ctx, p.Args[0], p.RawArgs, game.Snapshot()) {
			return errors.New("save failed")
		}
		r.printf("saved to %s\n", p.Args[0])
	case command.HandlerLoad:
		var doc session.Document
		if !r.slots.LoadInto(ctx, p.Args[0], &doc) {
			return fmt.Errorf("no slot %q", p.Args[0])
		}
		if err := game.Restore(doc); err != nil {
			return err
		}
		r.status()
	case command.HandlerDelete:
		if !r.slots.Delete(ctx, p.Args[0]) {
			return fmt.Errorf("deleting slot %q failed", p.Args[0])
		}
	case command.HandlerExport:
		data, ok := r.slots.Export(ctx, p.Args[0])
		if !ok {
			return fmt.Errorf("no slot %q", p.Args[0])
		}
		r.printf("%s\n", data)
	case command.HandlerPush:
		id, err := r.driver.SaveRemote(ctx)
		if err != nil {
			return err
		}
		r.printf("saved as %s\n", id)
	case command.HandlerPull:
		if err := r.driver.LoadRemote(ctx, p.Args[0]); err != nil {
			return err
		}
		r.status()
	case command.HandlerSaves:
		ch := game.Snapshot()
		list, err := r.driver.Client().ListSaves(ctx, ch.PlayerID)
		if err != nil {
			return err
		}
		for _, s := range list {
			r.printf("  %s  %s L%d %s\n", s.SaveID, s.CharacterName, s.Level, s.Genre)
		}
	default:
		return fmt.Errorf("%w %q", command.ErrUnknown, cmd.Name)
	}
	return nil
}

func (r *repl) newGame(name, class, gender, genre string) error {
	game := r.driver.Game()
	game.Reset()
	if err := game.Navigate(session.ScreenCharacter); err != nil {
		return err
	}
	if _, err := game.CreateCharacter(name, character.Class(strings.ToLower(class)), character.Gender(strings.ToLower(gender))); err != nil {
		return err
	}
	if err := game.Navigate(session.ScreenGenre); err != nil {
		return err
	}
	if err := game.SelectGenre(genre); err != nil {
		return err
	}
	if err := game.Navigate(session.ScreenGame); err != nil {
		return err
	}
	r.status()
	return nil
}

func (r *repl) choose(ctx context.Context, choice string) error {
	if _, err := r.driver.Choose(ctx, choice); err != nil {
		return err
	}
	r.status()
	return nil
}

func (r *repl) act(ctx context.Context, action combat.Action, itemID string) error {
	res, err := r.driver.Act(ctx, action, itemID)
	if err != nil {
		return err
	}
	for _, line := range res.CombatLog {
		r.printf("  %s\n", line)
	}
	r.status()
	return nil
}

func (r *repl) status() {
	game := r.driver.Game()
	ch, ok := game.Character()
	if !ok || !game.Started() {
		r.printf("No game in progress. Type new to start.\n")
		return
	}
	r.printf("\n%s the %s  L%d  HP %d/%d  XP %d  gold %d\n",
		ch.Name, ch.Class, ch.Level, ch.Health, ch.MaxHealth, ch.Experience, ch.Gold)

	switch game.Mode() {
	case session.ModeDefeated:
		r.printf("You have fallen. Type new to begin again.\n")
	case session.ModeCombat:
		if e, ok := game.Enemy(); ok {
			r.printf("Fighting %s  HP %d/%d\n", e.Name, e.Health, e.MaxHealth)
		}
	default:
		story, choices := game.Story()
		r.printf("\n%s\n\n", story)
		for i, c := range choices {
			r.printf("  %d. %s\n", i+1, c)
		}
	}
}
