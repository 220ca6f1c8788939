package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/eventbus"
	"github.com/bdombrowski2/amplience-sfcc-dc-extension-ecomm-toolkit/internal/ui"
)

var pickKey string

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Start the interactive picker (default)",
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

func init() {
	pickCmd.Flags().StringVar(&pickKey, "key", "", "field key (defaults to store.key)")
}

func runPick(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	a, err := newApp(cfg, logger, pickKey)
	if err != nil {
		return err
	}
	defer a.Close()

	b, err := a.newBinding()
	if err != nil {
		return err
	}
	defer b.Close()

	model := ui.NewModel(ctx, b, a.store, logger)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	// Set up event forwarding to UI
	eventChan := make(chan eventbus.DomainEvent, 100)
	stop := forwardEvents(a.bus, func(e eventbus.DomainEvent) {
		select {
		case eventChan <- e:
		default:
			logger.Warn("Event channel full, dropping event", zap.String("type", string(e.Type())))
		}
	})
	done := make(chan struct{})
	go func() {
		for {
			select {
			case e := <-eventChan:
				p.Send(ui.EventMsg{Event: e})
			case <-done:
				return
			}
		}
	}()
	defer func() {
		stop()
		close(done)
	}()

	logger.Info("Starting picker",
		zap.String("binding", b.ID()),
		zap.Stringer("mode", b.Mode()),
		zap.String("store", cfg.Store.Path))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}
