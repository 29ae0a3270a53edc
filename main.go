package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	medicalx "github.com/medibot-ai/medibot/agent/agents/medical"
	configx "github.com/medibot-ai/medibot/pkg/config"
	_ "github.com/medibot-ai/medibot/pkg/logger/autoload"
	openrouterx "github.com/medibot-ai/medibot/pkg/openrouter"
	supabasex "github.com/medibot-ai/medibot/pkg/supabase"
)

// AppConfig carries the demo caller identity. In production the HTTP
// layer resolves these from the authenticated session; this binary
// stands in for it.
type AppConfig struct {
	UserID   string `envconfig:"DEMO_USER_ID" split_words:"true" default:"demo-user"`
	UserName string `envconfig:"DEMO_USER_NAME" split_words:"true" default:"Demo User"`
}

func main() {
	appCfg := configx.MustNew[AppConfig]("")
	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	supabaseCfg := configx.MustNew[supabasex.Config]("SUPABASE")

	ctx := context.Background()

	gateway := supabasex.MustNew(*supabaseCfg)

	if client := openrouterx.NewClient(*openRouterCfg); client != nil {
		pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if _, err := client.Models.List(pingCtx); err != nil {
			log.Warn().Err(err).Msg("model backend credential check failed")
		}
		cancel()
	}

	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("create chat model")
	}

	assistant, err := medicalx.New(ctx, chatModel, gateway)
	if err != nil {
		log.Fatal().Err(err).Msg("create medical dispatcher")
	}

	fmt.Printf("MediBot ready for %s. Type a message, Ctrl-D to exit.\n", appCfg.UserName)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		reply, err := assistant.Run(ctx, appCfg.UserID, appCfg.UserName, line)
		if err != nil {
			log.Error().Err(err).Msg("turn rejected")
			continue
		}
		fmt.Println(reply)
	}
	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("read input")
	}
}
