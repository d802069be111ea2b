package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/shenikar/incident_report_system/internal/api"
	"github.com/shenikar/incident_report_system/internal/auth"
	"github.com/shenikar/incident_report_system/internal/config"
	"github.com/shenikar/incident_report_system/internal/incidents"
	"github.com/shenikar/incident_report_system/internal/models"
	"github.com/shenikar/incident_report_system/internal/session"
	"github.com/shenikar/incident_report_system/internal/view"
	"github.com/shenikar/incident_report_system/pkg/logger"
	"github.com/sirupsen/logrus"
)

const usage = `incidentctl - command-line client for the incident reports service

Usage:
  incidentctl <command> [flags]

Commands:
  register   create an account and log in
  login      log in with an existing account
  logout     drop the stored session
  whoami     show the current session
  list       list incidents (-status, -category, -mine)
  report     report a new incident (-title, -description, -category, -status)
  update     update an incident: update <id> [flags]
  delete     delete an incident: delete <id>

Configuration (environment or .env):
  INCIDENT_API_URL   base URL of the incident API (required)
  HTTP_TIMEOUT       request timeout, default 10s
  LOG_LEVEL          logrus level, default warn
  STATE_DIR          session storage dir, default ~/.incident-reports
`

type app struct {
	ctx  context.Context
	auth *auth.Controller
	repo *incidents.Repository
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Загрузка конфигурации
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	// Инициализация логгера
	log := logger.New(cfg.LogLevel)

	// Инициализация хранилища сессии и REST-клиента
	store := session.NewFileStore(cfg.StateDir)
	client := api.NewClient(cfg, log)

	// Инициализация контроллеров
	authCtrl := auth.NewController(client, store, log)
	repo := incidents.NewRepository(client, log)

	ctx := context.Background()
	// Репозиторий следует за токеном: вход тянет список, выход чистит его
	authCtrl.OnTokenChange(func(token string) {
		repo.SetToken(ctx, token)
	})

	a := &app{ctx: ctx, auth: authCtrl, repo: repo}

	if err := a.run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func (a *app) run(command string, args []string) error {
	switch command {
	case "register", "login":
		return a.runAuth(command, args)
	case "logout":
		a.auth.Logout()
		fmt.Println("Logged out.")
		return nil
	case "whoami":
		return a.runWhoami()
	case "list":
		return a.runList(args)
	case "report":
		return a.runReport(args)
	case "update":
		return a.runUpdate(args)
	case "delete":
		return a.runDelete(args)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) runAuth(command string, args []string) error {
	fs := flag.NewFlagSet(command, flag.ExitOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password (prompted when omitted)")
	fs.Parse(args)

	creds := models.Credentials{Username: *username, Password: *password}
	if creds.Password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		creds.Password = strings.TrimRight(line, "\r\n")
	}
	if msg := view.ValidateCredentials(&creds); msg != "" {
		return errors.New(msg)
	}

	var ok bool
	if command == "register" {
		ok = a.auth.Register(a.ctx, creds)
	} else {
		ok = a.auth.Login(a.ctx, creds)
	}
	if !ok {
		return errors.New(a.auth.Err())
	}

	fmt.Printf("Logged in as @%s\n", a.auth.Session().User.Username)
	return nil
}

func (a *app) runWhoami() error {
	sess := a.auth.Session()
	if !sess.Valid() {
		fmt.Println("Not logged in.")
		return nil
	}
	fmt.Printf("@%s (user id %d)\n", sess.User.Username, sess.User.ID)
	return nil
}

func (a *app) runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", view.FilterAll, "filter by status: Open, 'In Progress' or Success")
	category := fs.String("category", view.FilterAll, "filter by category: Safety or Maintenance")
	mine := fs.Bool("mine", false, "only incidents owned by the current user")
	fs.Parse(args)

	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	if msg := a.repo.Err(); msg != "" {
		return errors.New(msg)
	}

	all := a.repo.Incidents()
	filtered := view.Filter(all, *status, *category)
	if *mine {
		owned := make([]models.Incident, 0, len(filtered))
		for _, inc := range filtered {
			if inc.OwnedBy(sess.User.ID) {
				owned = append(owned, inc)
			}
		}
		filtered = owned
	}

	view.RenderIncidents(os.Stdout, filtered, sess.User.ID)
	if len(all) > 0 {
		fmt.Printf("\n%d of %d incidents\n", len(filtered), len(all))
	}
	return nil
}

func (a *app) runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	title := fs.String("title", "", "incident title")
	description := fs.String("description", "", "incident description")
	category := fs.String("category", string(models.CategorySafety), "Safety or Maintenance")
	status := fs.String("status", string(models.StatusOpen), "Open, 'In Progress' or Success")
	fs.Parse(args)

	if _, err := a.requireSession(); err != nil {
		return err
	}

	req := models.IncidentRequest{
		Title:       *title,
		Description: *description,
		Category:    models.Category(*category),
		Status:      models.Status(*status),
	}
	if msg := view.ValidateDraft(&req); msg != "" {
		return errors.New(msg)
	}

	if !a.repo.Create(a.ctx, req) {
		return errors.New(a.repo.Err())
	}
	fmt.Printf("Incident reported, %d incidents total.\n", len(a.repo.Incidents()))
	return nil
}

func (a *app) runUpdate(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: update <id> [flags]")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid incident ID %q", args[0])
	}

	fs := flag.NewFlagSet("update", flag.ExitOnError)
	title := fs.String("title", "", "new title")
	description := fs.String("description", "", "new description")
	category := fs.String("category", "", "new category")
	status := fs.String("status", "", "new status")
	fs.Parse(args[1:])

	if _, err := a.requireSession(); err != nil {
		return err
	}
	if msg := a.repo.Err(); msg != "" {
		return errors.New(msg)
	}

	// Незаданные флаги сохраняют текущие значения записи
	var current *models.Incident
	for _, inc := range a.repo.Incidents() {
		if inc.ID == id {
			current = &inc
			break
		}
	}
	if current == nil {
		return fmt.Errorf("incident %d not found", id)
	}

	req := models.IncidentRequest{
		Title:       current.Title,
		Description: current.Description,
		Category:    current.Category,
		Status:      current.Status,
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			req.Title = *title
		case "description":
			req.Description = *description
		case "category":
			req.Category = models.Category(*category)
		case "status":
			req.Status = models.Status(*status)
		}
	})
	if msg := view.ValidateDraft(&req); msg != "" {
		return errors.New(msg)
	}

	if !a.repo.Update(a.ctx, id, req) {
		return errors.New(a.repo.Err())
	}
	fmt.Printf("Incident %d updated.\n", id)
	return nil
}

func (a *app) runDelete(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: delete <id>")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid incident ID %q", args[0])
	}

	if _, err := a.requireSession(); err != nil {
		return err
	}

	if !a.repo.Delete(a.ctx, id) {
		return errors.New(a.repo.Err())
	}
	fmt.Printf("Incident %d deleted, %d incidents left.\n", id, len(a.repo.Incidents()))
	return nil
}

// requireSession проверяет восстановленную сессию и синхронизирует
// репозиторий с её токеном перед любой командой по инцидентам
func (a *app) requireSession() (models.Session, error) {
	sess := a.auth.Session()
	if !sess.Valid() {
		return models.Session{}, fmt.Errorf("not logged in, run 'incidentctl login' first")
	}
	a.repo.SetToken(a.ctx, sess.Token)
	return sess, nil
}
