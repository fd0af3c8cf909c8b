// Command dmgcore runs the CPU/Bus/APU core headlessly against a ROM
// image, for development and scripted trace comparisons. It has no
// display: PPU, joypad, and serial are addressable MMIO only, per the
// core's scope.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/carsongoodwin32/dmgcore/apu"
	"github.com/carsongoodwin32/dmgcore/bus"
	"github.com/carsongoodwin32/dmgcore/cpu"
	"github.com/carsongoodwin32/dmgcore/internal/traceview"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Description = "Sharp LR35902 CPU/Bus/APU core"
	app.Usage = "dmgcore --rom <path> [options]"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "rom",
			Usage: "Path to the ROM image",
		},
		cli.IntFlag{
			Name:  "steps",
			Usage: "Number of CPU instructions to execute",
			Value: 1_000_000,
		},
		cli.BoolFlag{
			Name:  "watch",
			Usage: "Show a live register/flag/voice dashboard while running",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	romPath := c.String("rom")
	if romPath == "" {
		if c.NArg() > 0 {
			romPath = c.Args().Get(0)
		} else {
			cli.ShowAppHelp(c)
			return errors.New("no ROM path provided")
		}
	}

	data, err := os.ReadFile(romPath)
	if err != nil {
		return fmt.Errorf("reading ROM: %w", err)
	}

	b := bus.NewWithCartridge(bus.NewFlatROM(data))
	machine := cpu.New(b)
	sound := apu.New([4]apu.Sink{apu.NullSink{}, apu.NullSink{}, apu.NullSink{}, apu.NullSink{}})

	var dashboard *traceview.Dashboard
	if c.Bool("watch") {
		dashboard, err = traceview.New()
		if err != nil {
			return fmt.Errorf("opening trace view: %w", err)
		}
		defer dashboard.Close()
	}

	steps := c.Int("steps")
	slog.Info("starting run", "rom", romPath, "steps", steps)

	for i := 0; i < steps; i++ {
		cycles, err := machine.Step()
		if err != nil {
			var unknown *cpu.UnknownOpcode
			if errors.As(err, &unknown) {
				slog.Error("halted on unknown opcode", "step", i, "opcode", unknown.Error())
				return err
			}
			return err
		}
		sound.Run(cycles, b)

		if dashboard != nil {
			dashboard.Render(machine, sound)
			if dashboard.ShouldQuit() {
				break
			}
		}

		if i%100_000 == 0 {
			slog.Debug("progress", "step", i, "pc", fmt.Sprintf("0x%04X", machine.Snapshot().PC))
		}
	}

	s := machine.Snapshot()
	slog.Info("run complete", "steps", steps,
		"af", fmt.Sprintf("0x%02X%02X", s.A, s.F), "bc", fmt.Sprintf("0x%02X%02X", s.B, s.C),
		"de", fmt.Sprintf("0x%02X%02X", s.D, s.E), "hl", fmt.Sprintf("0x%02X%02X", s.H, s.L),
		"sp", fmt.Sprintf("0x%04X", s.SP), "pc", fmt.Sprintf("0x%04X", s.PC),
		"flags", s.FlagString(), "voices", sound.VoiceStatus())
	return nil
}
