package playerui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"spirare/internal/playback"
)

// Run drives machine in the terminal until the user quits or ctx ends, then
// closes the machine. relay may be nil.
func Run(ctx context.Context, machine *playback.Machine, relay *BeatRelay, opts ...tea.ProgramOption) error {
	updates, unsubscribe := machine.Subscribe()
	defer unsubscribe()
	defer machine.Close()

	model := NewModel(machine, updates)
	program := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithContext(ctx)}, opts...)...)
	if relay != nil {
		relay.attach(program.Send)
		defer relay.attach(nil)
	}

	_, err := program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}
