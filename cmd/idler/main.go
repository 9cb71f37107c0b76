package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/stigoleg/emote-idler/internal/config"
	"github.com/stigoleg/emote-idler/internal/emote"
	"github.com/stigoleg/emote-idler/internal/host"
	"github.com/stigoleg/emote-idler/internal/idler"
	"github.com/stigoleg/emote-idler/internal/settings"
	"github.com/stigoleg/emote-idler/internal/ui"

	tea "github.com/charmbracelet/bubbletea"
)

const appVersion = "0.4.0"

const shutdownTimeout = 3 * time.Second

func main() {
	cfg := config.ParseFlags(appVersion)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("creating data dir: %v", err)
	}

	f, err := tea.LogToFile(cfg.LogPath(), "idler")
	if err != nil {
		log.Fatal(err)
	}

	shutdown := idler.NewShutdown(shutdownTimeout)
	shutdown.Add("log", f.Close)

	ui.UseTheme(cfg.Theme)

	src := emote.SourceFor(cfg.Sheet)
	catalog, err := emote.Load(context.Background(), src)
	if err != nil {
		log.Printf("catalog: %s: %v", src.Name(), err)
	}
	log.Printf("catalog: %d emotes from %s", catalog.Len(), src.Name())

	store, err := settings.Open(cfg.SettingsPath(), settings.WithCatalog(catalog))
	if err != nil {
		log.Printf("settings: %v, using defaults", err)
	}
	shutdown.Add("settings", store.Save)

	sim := host.NewSim()
	commands := host.NewCommands()
	surface := ui.NewSurface(true)
	if err := ui.RegisterCommands(commands, surface); err != nil {
		log.Printf("commands: %v", err)
	}

	model := ui.NewModel(ui.Deps{
		Catalog:  catalog,
		Store:    store,
		Sim:      sim,
		Commands: commands,
		Surface:  surface,
		Version:  appVersion,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithoutSignalHandler(),
	)

	// The runner must never wait on the program, which is not reading
	// messages until p.Run starts.
	events := idler.NewEventQueue(idler.DefaultEventBuffer)
	runner := idler.NewRunner(catalog, sim, sim, store,
		idler.WithInterval(cfg.Frame),
		idler.OnEvent(events.Push),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go events.Run(ctx, func(ev idler.Event) {
		p.Send(ui.RunnerEventMsg(ev))
	})
	if err := runner.Start(ctx); err != nil {
		log.Fatalf("starting runner: %v", err)
	}
	shutdown.Add("runner", func() error {
		commands.Unregister(ui.CommandOwner)
		return runner.StopWithTimeout(shutdownTimeout)
	})

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, getSignalsForPlatform()...)

	go func() {
		for sig := range sigChan {
			if isSIGTSTPForPlatform(sig) {
				log.Printf("Ignoring signal: %v", sig)
				continue
			}
			log.Printf("Received signal: %v", sig)
			p.Kill()
			return
		}
	}()

	_, runErr := p.Run()
	signal.Stop(sigChan)
	cancel()

	for _, err := range shutdown.Run() {
		log.Printf("shutdown: %v", err)
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		log.Printf("Error running program: %v", runErr)
		os.Exit(1)
	}
}
