package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/shule/apps/portal/nav"
	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/access"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/user"
	"github.com/trezcool/shule/services/auth"
	"github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/token"
)

var readPasswordFunc = term.ReadPassword // mockable

func main() {
	std := log.New(os.Stderr, "portal ", log.LstdFlags)
	var logger core.Logger
	if core.Conf.Debug || core.Conf.TestMode {
		logger = logsvc.NewConsoleLogger(std)
	} else {
		logger = logsvc.NewRollbarLogger(std, core.Conf)
	}

	store := session.NewStore(
		authsvc.NewRESTService(core.Conf.API),
		tokenstore.NewFileStore(core.Conf.Portal.TokenFile),
		logger,
	)

	policy := access.Policy{
		LoginPath:   core.Conf.Portal.LoginPath,
		LandingPath: core.Conf.Portal.LandingPath,
	}
	history := nav.NewMemHistory("/")

	router := nav.NewRouter(nav.Options{
		Store:   store,
		Policy:  policy,
		History: history,
		Routes:  nav.DefaultRoutes(terminalViews()),
		Loading: nav.ViewFunc(func(session.Session) { fmt.Println("loading...") }),
		Logger:  logger,
	})

	router.Boot(context.Background())
	runShell(router, store, history)
}

// terminalViews are placeholder presentation components; the real view shell is
// a separate concern and only ever receives an authorization decision.
func terminalViews() nav.Views {
	page := func(title string) nav.View {
		return nav.ViewFunc(func(sess session.Session) {
			if sess.User != nil {
				fmt.Printf("== %s == [%s@%s %s]\n", title, sess.User.Username, sess.TenantCode(), sess.User.Role)
			} else {
				fmt.Printf("== %s ==\n", title)
			}
		})
	}
	return nav.Views{
		"login":      page("Sign in"),
		"dashboard":  page("Dashboard"),
		"students":   page("Students"),
		"classes":    page("Classes"),
		"attendance": page("Attendance"),
		"grades":     page("Grades"),
		"reports":    page("Reports"),
		"users":      page("Users"),
		"schools":    page("Schools"),
	}
}

func runShell(router *nav.Router, store *session.Store, history *nav.MemHistory) {
	in := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: go <path> | login | logout | back | whoami | quit")
	for {
		fmt.Printf("%s> ", history.Current())
		if !in.Scan() {
			return
		}
		fields := strings.Fields(in.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "go":
			if len(fields) > 1 {
				router.Navigate(fields[1])
			}
		case "login":
			if err := login(store); err != nil {
				fmt.Println("login failed:", err)
				continue
			}
			router.Navigate(history.Current())
		case "logout":
			router.Logout()
		case "back":
			router.Navigate(history.Back())
		case "whoami":
			sess := store.Snapshot()
			if sess.User != nil {
				fmt.Printf("%s (%s) @ %s\n", sess.User.Name, sess.User.Role, sess.TenantCode())
			} else {
				fmt.Println(sess.Status)
			}
		case "quit":
			return
		}
	}
}

func login(store *session.Store) error {
	in := bufio.NewReader(os.Stdin)

	fmt.Print("school code: ")
	school, _ := in.ReadString('\n')
	fmt.Print("username: ")
	uname, _ := in.ReadString('\n')
	fmt.Print("password: ")
	pwd, err := readPasswordFunc(syscall.Stdin)
	fmt.Println()
	if err != nil {
		return err
	}

	creds := user.Credentials{
		Username:   strings.TrimSpace(uname),
		Password:   string(pwd),
		SchoolCode: strings.TrimSpace(school),
	}
	return store.Login(context.Background(), creds)
}
