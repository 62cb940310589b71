package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/ryanbastic/noteboard/internal/board"
	"github.com/ryanbastic/noteboard/internal/localstate"
	"github.com/ryanbastic/noteboard/internal/presence"
	"github.com/ryanbastic/noteboard/internal/sync"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "noteboard server base URL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	dir, err := localstate.DefaultDir()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cannot resolve config dir:", err)
		os.Exit(1)
	}
	state := localstate.New(dir)

	app := &app{
		serverURL: strings.TrimRight(*serverURL, "/"),
		state:     state,
		logger:    logger,
		tracker:   presence.NewTracker(),
		out:       os.Stdout,
	}

	// A saved session resumes without re-entering credentials.
	if account, err := state.Load(); err == nil && account != "" {
		if err := app.connect(account); err != nil {
			fmt.Fprintln(os.Stderr, "resume failed:", err)
		} else {
			fmt.Fprintln(os.Stdout, "resumed session as", account)
		}
	}

	app.repl(os.Stdin)
}

type app struct {
	serverURL string
	state     *localstate.Store
	logger    *slog.Logger
	tracker   *presence.Tracker
	out       io.Writer

	gateway *sync.Client
	session *board.Session
}

func (a *app) repl(in io.Reader) {
	if a.session == nil {
		fmt.Fprintln(a.out, "not logged in; use: login NAME SECRET | register NAME SECRET")
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(a.out, "> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")

		var err error
		switch cmd {
		case "quit", "exit":
			a.disconnect()
			return
		case "help":
			a.printHelp()
		case "login":
			err = a.authenticate("/v1/auth/login", rest)
		case "register":
			err = a.authenticate("/v1/auth/register", rest)
		case "logout":
			err = a.logout()
		case "board":
			err = a.requireSession(func() error { a.render(); return nil })
		case "who":
			err = a.requireSession(func() error {
				fmt.Fprintln(a.out, "online:", strings.Join(a.tracker.VisibleOnlineUsers(), ", "))
				return nil
			})
		case "select":
			err = a.requireSession(func() error { return a.selectCell(rest) })
		case "text":
			err = a.requireSession(func() error { return a.session.SetDraftText(rest) })
		case "color":
			err = a.requireSession(func() error {
				c, err := board.ParseColor(rest)
				if err != nil {
					return err
				}
				return a.session.SetDraftColor(c)
			})
		case "save":
			err = a.requireSession(func() error { return a.session.CommitDraft() })
		case "clear":
			err = a.requireSession(func() error { return a.session.ClearCell() })
		case "cancel":
			err = a.requireSession(func() error { a.session.CancelEdit(); return nil })
		default:
			fmt.Fprintf(a.out, "unknown command %q; try help\n", cmd)
		}
		if err != nil {
			fmt.Fprintln(a.out, "error:", err)
		}
	}
}

func (a *app) printHelp() {
	fmt.Fprint(a.out, `commands:
  login NAME SECRET     authenticate an existing account
  register NAME SECRET  create an account and log in
  logout                end the session and forget it
  board                 print the board
  who                   list online users
  select N              open cell N (1-22) for editing
  text TEXT             set the draft text
  color COLOR           set the draft color (white green orange red blue yellow)
  save                  publish the draft
  clear                 blank the selected cell
  cancel                close the edit without saving
  quit                  disconnect and exit
`)
}

func (a *app) requireSession(fn func() error) error {
	if a.session == nil {
		return fmt.Errorf("not logged in")
	}
	return fn()
}

type credentials struct {
	Name   string `json:"name"`
	Secret string `json:"secret"`
}

// authenticate posts credentials to path and, on success, opens the sync
// connection and persists the session.
func (a *app) authenticate(path, args string) error {
	name, secret, ok := strings.Cut(strings.TrimSpace(args), " ")
	if !ok {
		return fmt.Errorf("usage: %s NAME SECRET", strings.TrimPrefix(path, "/v1/auth/"))
	}
	if a.session != nil {
		return fmt.Errorf("already logged in as %s; logout first", a.session.Account())
	}

	body, err := json.Marshal(credentials{Name: name, Secret: strings.TrimSpace(secret)})
	if err != nil {
		return err
	}
	resp, err := http.Post(a.serverURL+path, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var out struct {
			Title  string `json:"title"`
			Detail string `json:"detail"`
		}
		json.NewDecoder(resp.Body).Decode(&out)
		if out.Detail != "" {
			return fmt.Errorf("%s", out.Detail)
		}
		return fmt.Errorf("server returned %s", resp.Status)
	}

	if err := a.connect(name); err != nil {
		return err
	}
	if err := a.state.Save(name); err != nil {
		a.logger.Warn("failed to persist session", "error", err)
	}
	fmt.Fprintln(a.out, "logged in as", name)
	return nil
}

// connect dials the websocket endpoint and wires subscriptions into the
// local session and presence tracker.
func (a *app) connect(account string) error {
	wsURL := strings.Replace(a.serverURL, "http", "ws", 1) + "/v1/sync"
	gw := sync.NewClient(wsURL, account, a.logger)

	session, err := board.NewSession(account, gw)
	if err != nil {
		return err
	}

	gw.SubscribeCells(session.ApplyRemote)
	gw.SubscribePresence(a.tracker.Apply)
	gw.SubscribeConnectivity(func(s sync.State) {
		fmt.Fprintf(a.out, "\n[%s]\n> ", s)
	})

	if err := gw.Connect(context.Background()); err != nil {
		return err
	}

	a.gateway = gw
	a.session = session
	return nil
}

func (a *app) disconnect() {
	if a.gateway != nil {
		a.gateway.Close()
	}
	a.gateway = nil
	a.session = nil
}

func (a *app) logout() error {
	if a.session == nil {
		return fmt.Errorf("not logged in")
	}
	a.disconnect()
	if err := a.state.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "logged out")
	return nil
}

func (a *app) selectCell(arg string) error {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return fmt.Errorf("usage: select N (1-%d)", board.BoardSize)
	}
	if err := a.session.SelectCell(board.CellKey(n)); err != nil {
		return err
	}
	d := a.session.Draft()
	fmt.Fprintf(a.out, "editing cell %d [%s] %q\n", n, d.Color, d.Text)
	return nil
}

const cellWidth = 12

// render prints the board in its two-row layout, first row ascending and
// second row descending.
func (a *app) render() {
	b := a.session.Board()
	active, _ := a.session.ActiveCell()

	for _, row := range board.Layout() {
		for _, key := range row {
			marker := " "
			if key == active {
				marker = "*"
			}
			fmt.Fprintf(a.out, "|%s%-2d %-*s", marker, int(key), cellWidth, clip(cellLabel(b[key])))
		}
		fmt.Fprintln(a.out, "|")
	}
}

func cellLabel(c board.Cell) string {
	if c.Text == "" && (c.Color == board.ColorWhite || c.Color == "") {
		return ""
	}
	if c.Color == board.ColorWhite || c.Color == "" {
		return c.Text
	}
	return c.Text + " (" + string(c.Color)[:1] + ")"
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= cellWidth {
		return s
	}
	return string(r[:cellWidth-1]) + "…"
}
