// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/poiesic/agentstore"
	"github.com/poiesic/agentstore/cache"
	"github.com/poiesic/agentstore/config"
	"github.com/poiesic/agentstore/core"
	"github.com/poiesic/agentstore/memo"
	"github.com/poiesic/agentstore/messaging"
	"github.com/poiesic/agentstore/outbox"
	"github.com/tidwall/pretty"
	"github.com/urfave/cli/v2"
	"golang.org/x/text/language"
)

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:   "agentstore",
		Usage:  "Inspect and operate an agent's document store",
		Writer: out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Read AGENTSTORE_* settings from this file",
				Value: ".env",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadEnvFile(c)
		},
		Commands: []*cli.Command{
			cacheCommand(),
			userCommand(),
			textCommand(),
			{
				Name:      "send",
				Usage:     "Queue a message for a user",
				ArgsUsage: "<user-id>",
				Action:    sendCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "text", Aliases: []string{"t"}, Usage: "Message text", Required: true},
					&cli.StringSliceFlag{Name: "option", Aliases: []string{"o"}, Usage: "Quick-reply option (repeatable)"},
				},
			},
			{
				Name:      "flush",
				Usage:     "Deliver queued messages over a platform",
				ArgsUsage: "<user-id>...",
				Action:    flushCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Usage: "telegram, facebook_messenger or custom_chat", Required: true},
					&cli.IntFlag{Name: "workers", Usage: "Recipients served concurrently", Value: 4},
				},
			},
			{
				Name:      "complete",
				Usage:     "Run a prompt through the memoizing completer",
				ArgsUsage: "<prompt>",
				Action:    completeCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "generation", Usage: "Cache generation", Value: 1},
				},
			},
		},
	}
}

func cacheCommand() *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Read and write cache entries",
		Subcommands: []*cli.Command{
			{
				Name:      "put",
				Usage:     "Store a payload under a key",
				ArgsUsage: "<key> <payload>",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "generation", Aliases: []string{"g"}, Usage: "Generation tag", Value: 0},
				},
				Action: func(c *cli.Context) error {
					if c.NArg() != 2 {
						return fmt.Errorf("expected <key> <payload>")
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						entry, err := db.Caches().InsertCache(ctx, cache.New(c.Args().Get(0), c.Int("generation"), c.Args().Get(1)))
						if err != nil {
							return err
						}
						return printJSON(c, entry)
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show the entry stored under a key",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key, err := singleArg(c, "key")
					if err != nil {
						return err
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						entry, err := db.Caches().FindByID(ctx, key)
						if err != nil {
							return err
						}
						if entry == nil {
							return fmt.Errorf("no cache entry %q", key)
						}
						return printJSON(c, entry)
					})
				},
			},
			{
				Name:      "delete",
				Usage:     "Remove the entry stored under a key",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key, err := singleArg(c, "key")
					if err != nil {
						return err
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						return db.Caches().DeleteCacheWithID(ctx, key)
					})
				},
			},
		},
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user and print its id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "first", Usage: "First name"},
					&cli.StringFlag{Name: "last", Usage: "Last name"},
					&cli.StringFlag{Name: "language", Usage: "BCP 47 language tag", Value: "en"},
				},
				Action: func(c *cli.Context) error {
					lang, err := language.Parse(c.String("language"))
					if err != nil {
						return fmt.Errorf("invalid language: %w", err)
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						u, err := db.Users().Insert(ctx, core.NewUser(c.String("first"), c.String("last"), lang))
						if err != nil {
							return err
						}
						id, err := u.ID()
						if err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, id)
						return nil
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Show a user",
				ArgsUsage: "<user-id>",
				Action: func(c *cli.Context) error {
					id, err := singleArg(c, "user-id")
					if err != nil {
						return err
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						u, err := db.Users().FindByID(ctx, id)
						if err != nil {
							return err
						}
						if u == nil {
							return fmt.Errorf("no user %q", id)
						}
						return printJSON(c, u)
					})
				},
			},
			{
				Name:      "link",
				Usage:     "Attach a platform account to a user",
				ArgsUsage: "<user-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "platform", Aliases: []string{"p"}, Required: true},
					&cli.StringFlag{Name: "platform-id", Required: true},
				},
				Action: func(c *cli.Context) error {
					id, err := singleArg(c, "user-id")
					if err != nil {
						return err
					}
					platform, err := core.ParseChatPlatform(c.String("platform"))
					if err != nil {
						return err
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						u, err := db.Users().LinkPlatform(ctx, id, platform, c.String("platform-id"))
						if err != nil {
							return err
						}
						return printJSON(c, u)
					})
				},
			},
		},
	}
}

func textCommand() *cli.Command {
	return &cli.Command{
		Name:  "text",
		Usage: "Manage localized texts",
		Subcommands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Store a text and print its id",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "en", Usage: "English text", Required: true},
					&cli.StringFlag{Name: "it", Usage: "Italian text"},
					&cli.StringFlag{Name: "es", Usage: "Spanish text"},
					&cli.StringFlag{Name: "fr", Usage: "French text"},
				},
				Action: func(c *cli.Context) error {
					text := core.NewLocalizedText(c.String("en"))
					text.Italian = c.String("it")
					text.Spanish = c.String("es")
					text.French = c.String("fr")
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						stored, err := db.Texts().Insert(ctx, text)
						if err != nil {
							return err
						}
						id, err := stored.ID()
						if err != nil {
							return err
						}
						fmt.Fprintln(c.App.Writer, id)
						return nil
					})
				},
			},
			{
				Name:      "get",
				Usage:     "Print a text in the closest available language",
				ArgsUsage: "<text-id>",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Usage: "BCP 47 language tag", Value: "en"},
				},
				Action: func(c *cli.Context) error {
					id, err := singleArg(c, "text-id")
					if err != nil {
						return err
					}
					lang, err := language.Parse(c.String("language"))
					if err != nil {
						return fmt.Errorf("invalid language: %w", err)
					}
					return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
						text, err := db.Texts().FindByID(ctx, id)
						if err != nil {
							return err
						}
						if text == nil {
							return fmt.Errorf("no text %q", id)
						}
						fmt.Fprintln(c.App.Writer, text.Text(lang))
						return nil
					})
				},
			},
		},
	}
}

func sendCommand(c *cli.Context) error {
	id, err := singleArg(c, "user-id")
	if err != nil {
		return err
	}
	msg := messaging.OutboundMessage{Text: c.String("text"), Options: c.StringSlice("option")}
	return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
		m, err := core.NewUnreadMessage(id, msg)
		if err != nil {
			return err
		}
		stored, err := db.UnreadMessages().Insert(ctx, m)
		if err != nil {
			return err
		}
		return printJSON(c, stored)
	})
}

func flushCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one <user-id> is required")
	}
	tag, err := core.ParseChatPlatform(c.String("platform"))
	if err != nil {
		return err
	}
	return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
		platform, err := db.Platform(tag)
		if err != nil {
			return err
		}
		return flush(ctx, c.App.Writer, db, platform, c.Int("workers"), c.Args().Slice())
	})
}

// flush delivers the queued messages of userIDs and closes platform.
func flush(ctx context.Context, out io.Writer, db *agentstore.Database, platform messaging.MessagingPlatform, workers int, userIDs []string) error {
	if closer, ok := platform.(io.Closer); ok {
		defer closer.Close()
	}
	courier, err := db.NewCourier(platform, outbox.WithPoolSize(workers))
	if err != nil {
		return err
	}
	defer courier.Release()

	sent, err := courier.Deliver(ctx, userIDs...)
	fmt.Fprintf(out, "delivered %d message(s)\n", sent)
	return err
}

func completeCommand(c *cli.Context) error {
	prompt := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("a <prompt> is required")
	}
	return withDatabase(c, func(ctx context.Context, db *agentstore.Database) error {
		completer, err := db.NewCompleter(memo.WithGeneration(c.Int("generation")))
		if err != nil {
			return err
		}
		answer, err := completer.Complete(ctx, prompt)
		if err != nil {
			return fmt.Errorf("completion failed: %w", err)
		}
		fmt.Fprintln(c.App.Writer, answer)
		return nil
	})
}

func withDatabase(c *cli.Context, fn func(ctx context.Context, db *agentstore.Database) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := agentstore.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()
	return fn(c.Context, db)
}

func singleArg(c *cli.Context, name string) (string, error) {
	if c.NArg() != 1 || c.Args().First() == "" {
		return "", fmt.Errorf("expected exactly one <%s>", name)
	}
	return c.Args().First(), nil
}

func printJSON(c *cli.Context, v core.JSONConvertible) error {
	s, err := v.ToJSONString()
	if err != nil {
		return err
	}
	_, err = c.App.Writer.Write(pretty.Pretty([]byte(s)))
	return err
}

// loadEnvFile reads the --env-file into the process environment. A missing
// default file is not an error.
func loadEnvFile(c *cli.Context) error {
	path := c.String("env-file")
	err := godotenv.Load(path)
	if err != nil && errors.Is(err, fs.ErrNotExist) && !c.IsSet("env-file") {
		return nil
	}
	return err
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
