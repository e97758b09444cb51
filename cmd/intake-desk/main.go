package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-desk-api/internal/dto"
	"github.com/noah-isme/academy-desk-api/internal/fee"
	"github.com/noah-isme/academy-desk-api/internal/intake"
	"github.com/noah-isme/academy-desk-api/internal/models"
	"github.com/noah-isme/academy-desk-api/pkg/apiclient"
	"github.com/noah-isme/academy-desk-api/pkg/config"
	"github.com/noah-isme/academy-desk-api/pkg/logger"
)

const usage = `usage: intake-desk <command> [flags]

commands:
  login    -user NAME -password PASS      print an access token for API_TOKEN
  admit    [form flags] [-submit]         edit the admission draft, optionally submit it
  pending                                 list registrations awaiting approval
  approve  PENDING_ID [flags]             approve a pending registration
  reject   PENDING_ID [-reason TEXT]      reject a pending registration
  draft    show|clear [-remote]           inspect or discard the admission draft
  price    SESSION_ID                     look up the configured session price
  staff    list|add|remove [flags]        manage desk accounts (owner only)
`

type app struct {
	cfg    *config.DeskConfig
	client *apiclient.Client
	logger *zap.Logger
}

func main() {
	cfg, err := config.LoadDesk()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.Build(cfg.Env, cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:    cfg,
		client: apiclient.New(cfg.APIBaseURL+"/api", cfg.APIToken, cfg.HTTPTimeout, apiclient.WithLogger(logr)),
		logger: logr,
	}

	cmd, args := os.Args[1], os.Args[2:]
	var runErr error
	switch cmd {
	case "login":
		runErr = a.login(ctx, args)
	case "admit":
		runErr = a.admit(ctx, args)
	case "pending":
		runErr = a.pending(ctx)
	case "approve":
		runErr = a.approve(ctx, args)
	case "reject":
		runErr = a.reject(ctx, args)
	case "draft":
		runErr = a.draft(ctx, args)
	case "price":
		runErr = a.price(ctx, args)
	case "staff":
		runErr = a.staff(ctx, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if runErr != nil {
		report(runErr)
		os.Exit(1)
	}
}

func report(err error) {
	var field interface{ FieldName() string }
	if errors.As(err, &field) && field.FieldName() != "" {
		fmt.Fprintf(os.Stderr, "%s: %s\n", field.FieldName(), err.Error())
		return
	}
	fmt.Fprintln(os.Stderr, err.Error())
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	user := fs.String("user", "", "username")
	password := fs.String("password", "", "password")
	_ = fs.Parse(args)

	res, err := a.client.Login(ctx, *user, *password)
	if err != nil {
		return err
	}
	fmt.Println(res.AccessToken)
	return nil
}

func (a *app) draftStore(remote bool) intake.DraftStore {
	if remote {
		return intake.NewRemoteDraftStore(a.client)
	}
	return intake.NewFileDraftStore(a.cfg.DraftDir, a.logger)
}

func (a *app) admit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("admit", flag.ExitOnError)
	remote := fs.Bool("remote", false, "keep the draft on the server instead of a local file")
	name := fs.String("name", "", "student name")
	father := fs.String("father", "", "father's name")
	gender := fs.String("gender", "", "male, female or other")
	class := fs.String("class", "", "class id")
	session := fs.String("session", "", "session id, empty to clear")
	group := fs.String("group", "", "group")
	subjects := fs.String("subjects", "", "comma separated subject names")
	studentPhone := fs.String("student-phone", "", "student phone")
	parentPhone := fs.String("parent-phone", "", "parent phone")
	address := fs.String("address", "", "address")
	date := fs.String("date", "", "admission date (YYYY-MM-DD)")
	photo := fs.String("photo", "", "photo URL")
	custom := fs.Bool("custom", false, "override the session price")
	total := fs.String("total", "", "total fee")
	paid := fs.String("paid", "", "paid amount")
	pendingID := fs.String("pending", "", "pending registration to admit from")
	submit := fs.Bool("submit", false, "submit the admission")
	cancel := fs.Bool("cancel", false, "discard the form")
	_ = fs.Parse(args)

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	desk := intake.NewAdmissionDesk(a.client, a.draftStore(*remote), a.logger)
	if *cancel {
		return desk.Cancel(ctx)
	}
	if _, err := desk.Start(ctx); err != nil {
		return err
	}

	if set["pending"] {
		p, err := a.findPending(ctx, *pendingID)
		if err != nil {
			return err
		}
		desk.Prefill(ctx, p)
	}

	desk.Update(ctx, func(d *models.AdmissionDraft) {
		assign := func(flagName string, dst *string, value string) {
			if set[flagName] {
				*dst = strings.TrimSpace(value)
			}
		}
		assign("name", &d.StudentName, *name)
		assign("father", &d.FatherName, *father)
		assign("gender", &d.Gender, *gender)
		assign("class", &d.ClassID, *class)
		assign("group", &d.Group, *group)
		assign("student-phone", &d.StudentPhone, *studentPhone)
		assign("parent-phone", &d.ParentPhone, *parentPhone)
		assign("address", &d.Address, *address)
		assign("date", &d.AdmissionDate, *date)
		assign("photo", &d.Photo, *photo)
		if set["subjects"] {
			d.Subjects = splitList(*subjects)
		}
	})

	if set["session"] {
		desk.SelectSession(ctx, *session)
	}
	if set["custom"] {
		if err := desk.SetCustomFee(ctx, *custom); err != nil {
			return err
		}
	}
	if set["total"] {
		if err := desk.SetTotalFee(ctx, *total); err != nil {
			return err
		}
	}
	if set["paid"] {
		if err := desk.SetPaidAmount(ctx, *paid); err != nil {
			return err
		}
	}

	printFeeState(desk.State(), desk.Editable())
	if !*submit {
		return nil
	}

	student, err := desk.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("admitted %s (%s), balance %s\n", student.StudentName, student.ID, student.Balance().String())
	return nil
}

func (a *app) pending(ctx context.Context) error {
	list, err := a.client.Pending(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		proposed := "-"
		if p.ProposedFee.Valid {
			proposed = p.ProposedFee.Decimal.String()
		}
		fmt.Printf("%s\t%s\t%s\tproposed %s\n", p.ID, p.StudentName, p.ParentPhone, proposed)
	}
	return nil
}

func (a *app) findPending(ctx context.Context, id string) (models.PendingStudent, error) {
	list, err := a.client.Pending(ctx)
	if err != nil {
		return models.PendingStudent{}, err
	}
	for _, p := range list {
		if p.ID == id {
			return p, nil
		}
	}
	return models.PendingStudent{}, fmt.Errorf("pending registration %s not found", id)
}

func (a *app) approve(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("approve needs a pending registration id")
	}
	fs := flag.NewFlagSet("approve", flag.ExitOnError)
	class := fs.String("class", "", "class id, defaults to the registration's class")
	collect := fs.Bool("collect", false, "collect a payment now")
	paid := fs.String("paid", "", "amount collected")
	custom := fs.Bool("custom", false, "override the session price")
	total := fs.String("total", "", "custom total fee")
	dryRun := fs.Bool("dry-run", false, "show the outcome without approving")
	_ = fs.Parse(args[1:])

	p, err := a.findPending(ctx, args[0])
	if err != nil {
		return err
	}
	desk := intake.NewApprovalDesk(a.client, a.logger)
	desk.Open(ctx, p)
	if *class != "" {
		desk.SetClass(*class)
	}
	desk.SetCollect(*collect)
	if *custom {
		if err := desk.SetCustomFee(true); err != nil {
			return err
		}
	}
	if *total != "" {
		if err := desk.SetTotalFee(*total); err != nil {
			return err
		}
	}
	if *paid != "" {
		if err := desk.SetPaidAmount(*paid); err != nil {
			return err
		}
	}

	amounts := desk.Amounts()
	status := "outstanding"
	if amounts.FullyPaid {
		status = "fully paid"
	}
	fmt.Printf("total %s, paid %s, balance %s (%s)\n", amounts.TotalFee, amounts.PaidAmount, amounts.Balance, status)
	if *dryRun {
		return nil
	}

	res, err := desk.Approve(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("approved %s\nusername: %s\npassword: %s\n", res.Student.ID, res.Credentials.Username, res.Credentials.Password)
	return nil
}

func (a *app) reject(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("reject needs a pending registration id")
	}
	fs := flag.NewFlagSet("reject", flag.ExitOnError)
	reason := fs.String("reason", "", "reason kept in the audit log")
	_ = fs.Parse(args[1:])

	desk := intake.NewApprovalDesk(a.client, a.logger)
	desk.Open(ctx, models.PendingStudent{ID: args[0]})
	if err := desk.Reject(ctx, *reason); err != nil {
		return err
	}
	fmt.Printf("rejected %s\n", args[0])
	return nil
}

func (a *app) draft(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("draft needs show or clear")
	}
	fs := flag.NewFlagSet("draft", flag.ExitOnError)
	remote := fs.Bool("remote", false, "use the server draft slot")
	_ = fs.Parse(args[1:])
	store := a.draftStore(*remote)

	switch args[0] {
	case "show":
		d, found, err := store.Load(ctx)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("no draft")
			return nil
		}
		out, err := json.MarshalIndent(d, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	case "clear":
		return store.Clear(ctx)
	default:
		return fmt.Errorf("unknown draft command %q", args[0])
	}
}

func (a *app) price(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("price needs a session id")
	}
	res, ok := intake.NewSessionPriceResolver(a.client, a.logger).Resolve(ctx, args[0])
	if !ok || !res.Price.Valid {
		fmt.Printf("%s: no session price, fee is entered manually\n", args[0])
		return nil
	}
	fmt.Printf("%s: %s\n", args[0], res.Price.Decimal.String())
	return nil
}

func (a *app) staff(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("staff needs list, add or remove")
	}
	fs := flag.NewFlagSet("staff", flag.ExitOnError)
	search := fs.String("search", "", "filter by username or name")
	username := fs.String("user", "", "username")
	fullName := fs.String("name", "", "full name")
	role := fs.String("role", string(models.RoleStaff), "OWNER, ADMIN or STAFF")
	password := fs.String("password", "", "initial password")
	_ = fs.Parse(args[1:])

	switch args[0] {
	case "list":
		users, err := a.client.Users(ctx, *search)
		if err != nil {
			return err
		}
		for _, u := range users {
			fmt.Printf("%s  %-20s %-6s active=%t  %s\n", u.ID, u.Username, u.Role, u.Active, u.FullName)
		}
		return nil
	case "add":
		user, err := a.client.CreateUser(ctx, dto.CreateUserRequest{
			Username: *username,
			FullName: *fullName,
			Role:     models.UserRole(strings.ToUpper(*role)),
			Password: *password,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", user.Username, user.ID)
		return nil
	case "remove":
		if fs.NArg() < 1 {
			return errors.New("staff remove needs a user id")
		}
		return a.client.DeactivateUser(ctx, fs.Arg(0))
	default:
		return fmt.Errorf("unknown staff command %q", args[0])
	}
}

func printFeeState(state fee.State, editable bool) {
	fmt.Printf("mode %s, total %s, paid %s, discount %s, balance %s", state.Mode, state.TotalFee, state.PaidAmount, state.DiscountAmount, state.Balance)
	if !editable {
		fmt.Print(" (total locked to session price)")
	}
	fmt.Println()
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
