package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/woshisimox/mahjong-ai-match/internal/config"
	"github.com/woshisimox/mahjong-ai-match/internal/game/mahjong/table"
)

var simulateOpts struct {
	profile string
	hands   int
	seed    uint64
	names   []string
	events  bool
	json    bool
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "本地模拟一场比赛, 四个座位均使用启发式出牌",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadOrDefault(configFile)
		if err != nil {
			return err
		}
		level := cfg.App.LogLevel
		if logLevel != "" {
			level = logLevel
		}
		logger := newLogger(level, logFormat)

		engine := cfg.Engine
		if simulateOpts.profile != "" {
			engine.Profile = simulateOpts.profile
		}
		if simulateOpts.hands > 0 {
			engine.Hands = simulateOpts.hands
		}
		if simulateOpts.seed != 0 {
			engine.Seed = simulateOpts.seed
		}
		profile, err := engine.RuleProfile()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		sinks := table.MultiSink{table.LogSink{Logger: logger}}
		if simulateOpts.events {
			enc := json.NewEncoder(out)
			sinks = append(sinks, table.SinkFunc(func(_ context.Context, e table.Event) error {
				return enc.Encode(e)
			}))
		}

		match, err := table.NewMatch(table.MatchConfig{
			Profile: profile,
			Hands:   engine.Hands,
			Names:   simulateOpts.names,
			Seed:    engine.Seed,
			Options: table.Options{Sink: sinks, Timeout: engine.ProviderTimeout, Logger: logger},
		})
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		go func() {
			<-ctx.Done()
			match.Control().Stop()
		}()

		res, err := match.Play(ctx)
		if err != nil {
			return err
		}
		if simulateOpts.json {
			return json.NewEncoder(out).Encode(res)
		}
		printSummary(out, res, simulateOpts.names)
		return nil
	},
}

func init() {
	f := simulateCmd.Flags()
	f.StringVar(&simulateOpts.profile, "profile", "", "rule profile: classic-136, sichuan-108, sichuan-strict")
	f.IntVar(&simulateOpts.hands, "hands", 0, "number of hands")
	f.Uint64Var(&simulateOpts.seed, "seed", 0, "shuffle seed, 0 for random")
	f.StringSliceVar(&simulateOpts.names, "names", nil, "seat names")
	f.BoolVar(&simulateOpts.events, "events", false, "print every event as a JSON line")
	f.BoolVar(&simulateOpts.json, "json", false, "print the match result as JSON")
}

// loadOrDefault 配置文件不存在时使用默认配置
func loadOrDefault(path string) (*config.Config, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return config.Default()
	}
	return config.Load(path)
}

func seatName(names []string, seat int) string {
	if seat < len(names) && names[seat] != "" {
		return names[seat]
	}
	return fmt.Sprintf("seat%d", seat)
}

func printSummary(w io.Writer, res table.MatchResult, names []string) {
	for _, h := range res.Hands {
		switch {
		case h.Stopped:
			fmt.Fprintf(w, "hand %d: stopped\n", h.Hand)
			continue
		case len(h.Wins) == 0:
			fmt.Fprintf(w, "hand %d: exhausted\n", h.Hand)
		default:
			fmt.Fprintf(w, "hand %d:\n", h.Hand)
		}
		for _, win := range h.Wins {
			how := "self-draw"
			if !win.SelfDraw {
				how = "from " + seatName(names, win.From)
			}
			fmt.Fprintf(w, "  %s wins on %s (%s) fan=%d [%s]\n",
				seatName(names, win.Seat), win.Tile, how, win.Fan, strings.Join(win.Labels, " "))
		}
	}
	fmt.Fprintln(w, "scores:")
	for seat, score := range res.Scores {
		fmt.Fprintf(w, "  %-8s %+d\n", seatName(names, seat), score)
	}
	if res.Stopped {
		fmt.Fprintln(w, "match stopped")
	}
}
