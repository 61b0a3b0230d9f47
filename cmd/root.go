/*
 * kurozora-bot is a Discord bot to search and share the Kurozora catalog.
 * Copyright (C) 2025  Lucas Duport
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 */

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/kurozora/kurozora-bot/pkg/config"
	"github.com/kurozora/kurozora-bot/pkg/database"
	"github.com/kurozora/kurozora-bot/pkg/discord"
	"github.com/kurozora/kurozora-bot/pkg/server"
	"github.com/kurozora/kurozora-bot/pkg/utils"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "kurozora-bot",
	Short: "Discord bot to search and share the Kurozora catalog",
	Long: `Kurozora Bot brings the Kurozora catalog to Discord.

It supports:
- Searching anime, manga, games and characters with numbered replies
- Music search with YouTube, Apple Music and Spotify links
- Polls stored in SQLite or PostgreSQL
- Tracking parameter removal for posted links
- A small HTTP status API`,

	RunE: func(cmd *cobra.Command, args []string) error {
		applyLogLevel(viper.GetString("log-level"))
		utils.InfoLog("[kurozora-bot] Bot is starting...")

		conf := loadConfig()
		if err := conf.Validate(); err != nil {
			return err
		}
		utils.DebugLog("Discord token: %s, API: %s", conf.Discord.Token, conf.Catalog.APIURL)

		db, err := database.NewDBManager(conf.Database.Driver, conf.Database.DSN)
		if err != nil {
			utils.ErrorLog("Database unavailable, polls disabled: %v", err)
			db = nil
		} else {
			defer db.Close()
		}

		bot, err := discord.NewBot(conf, db)
		if err != nil {
			return fmt.Errorf("failed to create Discord bot: %w", err)
		}
		if err := bot.Start(); err != nil {
			return fmt.Errorf("failed to start Discord bot: %w", err)
		}
		defer bot.Stop()

		var status *server.Config
		if conf.HTTP.Port > 0 {
			var polls server.PollCounter
			if db.IsInitialized() {
				polls = db
			}
			status = server.NewServer(conf.HTTP.Port, conf.HTTP.APIKey.PlainText(), bot.Selections(), polls, bot.Uptime)
			go func() {
				if err := status.Serve(); err != nil {
					utils.ErrorLog("Status API stopped: %v", err)
				}
			}()
		}

		utils.InfoLog("[kurozora-bot] Bot is running. Press Ctrl+C to exit.")
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop

		if status != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := status.Shutdown(ctx); err != nil {
				utils.WarnLog("Status API shutdown: %v", err)
			}
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	defer utils.Close()
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.kurozora-bot.yaml)")

	// Discord
	rootCmd.Flags().String("discord-token", "", "Discord bot token")
	rootCmd.Flags().String("app-id", "", "Discord application ID (defaults to the bot user)")
	rootCmd.Flags().String("dev-guild-id", "", "Register commands in this guild only")

	// Catalog
	rootCmd.Flags().String("kurozora-url", "https://kurozora.app", "Kurozora website URL")
	rootCmd.Flags().String("kurozora-api-url", "https://api.kurozora.app", "Kurozora API URL")
	rootCmd.Flags().String("kisara-url", "https://kisara.app", "Kisara gif API URL")
	rootCmd.Flags().Float64("catalog-rps", 4, "Catalog requests per second (0 for unlimited)")

	// Music
	rootCmd.Flags().String("spotify-client-id", "", "Spotify client ID")
	rootCmd.Flags().String("spotify-client-secret", "", "Spotify client secret")
	rootCmd.Flags().String("musickit-token", "", "Apple MusicKit developer token")

	// Storage
	rootCmd.Flags().String("db-driver", database.DriverSQLite, "Poll store driver (sqlite or postgres)")
	rootCmd.Flags().String("db-dsn", "", "Poll store DSN")

	// Status API
	rootCmd.Flags().Int("http-port", 8080, "Status API port (0 disables)")
	rootCmd.Flags().String("api-key", "", "Status API key")

	// Selection
	rootCmd.Flags().Duration("search-window", 30*time.Second, "Reply window for catalog searches")
	rootCmd.Flags().Duration("track-window", 15*time.Second, "Reply window for music searches")
	rootCmd.Flags().Duration("notice-ttl", 5*time.Second, "Lifetime of invalid reply notices")
	rootCmd.Flags().Int("search-limit", 5, "Catalog results per search (1-10)")

	rootCmd.Flags().Bool("link-cleaner", true, "Reply with cleaned links")

	// Logging
	rootCmd.Flags().String("log-level", "", "Log level: debug, info, warn or error (defaults to LOG_LEVEL)")

	if err := viper.BindPFlags(rootCmd.Flags()); err != nil {
		utils.ErrorLog("Error binding PFlags to viper: %v", err)
		os.Exit(1)
	}
}

// initConfig reads in .env, config file and ENV variables if set
func initConfig() {
	if err := godotenv.Load(); err == nil {
		utils.InfoLog("Loaded environment from .env")
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".kurozora-bot")
	}

	// Replace hyphens with underscores in environment variables
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		utils.InfoLog("Using config file: %s", viper.ConfigFileUsed())
	}
}

// applyLogLevel overrides the environment level when a name is given.
func applyLogLevel(name string) {
	if strings.TrimSpace(name) == "" {
		return
	}
	utils.SetLevel(utils.ParseLevel(name, false))
}

func loadConfig() *config.BotConfig {
	return &config.BotConfig{
		Discord: config.DiscordConfig{
			Token:      config.CredentialString(viper.GetString("discord-token")),
			AppID:      viper.GetString("app-id"),
			DevGuildID: viper.GetString("dev-guild-id"),
		},
		Catalog: config.CatalogConfig{
			WebURL:    viper.GetString("kurozora-url"),
			APIURL:    viper.GetString("kurozora-api-url"),
			KisaraURL: viper.GetString("kisara-url"),
			RPS:       viper.GetFloat64("catalog-rps"),
		},
		Music: config.MusicConfig{
			SpotifyClientID:     viper.GetString("spotify-client-id"),
			SpotifyClientSecret: config.CredentialString(viper.GetString("spotify-client-secret")),
			MusicKitToken:       config.CredentialString(viper.GetString("musickit-token")),
		},
		Database: config.DatabaseConfig{
			Driver: viper.GetString("db-driver"),
			DSN:    viper.GetString("db-dsn"),
		},
		HTTP: config.HTTPConfig{
			Port:   viper.GetInt("http-port"),
			APIKey: config.CredentialString(viper.GetString("api-key")),
		},
		Selection: config.SelectionConfig{
			SearchWindow: viper.GetDuration("search-window"),
			TrackWindow:  viper.GetDuration("track-window"),
			NoticeTTL:    viper.GetDuration("notice-ttl"),
			SearchLimit:  viper.GetInt("search-limit"),
		},
		LinkCleaner: viper.GetBool("link-cleaner"),
	}
}
