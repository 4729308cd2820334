package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/refscope/refscope/pkg/memtrack"
	"github.com/refscope/refscope/pkg/scope"
	"github.com/refscope/refscope/pkg/sizeof"

	jsoniter "github.com/json-iterator/go"
	"github.com/peterh/liner"
	"github.com/spf13/cobra"
)

const exploreHelp = `commands:
  env <name> [parent]          create an environment (default parent: global)
  define <env> <name> <value>  bind a name to a JSON value
  alias <env> <dst> <src>      bind dst to the object already bound to src
  assign <env> <name> <value>  rebind a name in its defining environment
  modify <env> <name> <value>  copy-on-modify write
  get <env> <name>             print the value a name resolves to
  where <env> <name>           print the environment a name is bound in
  refs <env> <name>            print the reference count of a binding
  size <env> <name>            print the retained size of a binding
  dump                         print the environment graph
  snapshot                     print the current memory figures
  help                         print this help
  exit                         leave`

var historyFile = filepath.Join(os.TempDir(), ".refscope_history")

// exploreCmd runs an interactive session over live environments
var exploreCmd = &cobra.Command{
	Use:   "explore",
	Short: "Interactively explore environments",
	Long: `Run an interactive session over live environments.

The session starts with a single "global" environment. Bindings hold JSON
values. Type "help" for the available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		var err error
		defer func(t0 time.Time) {
			cliUsage(t0, "explore", err)
		}(time.Now())

		line := liner.NewLiner()
		defer func() { _ = line.Close() }()
		line.SetCtrlCAborts(true)

		if f, herr := os.Open(historyFile); herr == nil {
			_, _ = line.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			if f, herr := os.Create(historyFile); herr == nil {
				_, _ = line.WriteHistory(f)
				_ = f.Close()
			}
		}()

		session := newExploreSession()
		for {
			input, lerr := line.Prompt("refscope> ")
			if lerr != nil { // io.EOF or liner.ErrPromptAborted
				return
			}
			input = strings.TrimSpace(input)
			if input == "" {
				continue
			}
			line.AppendHistory(input)
			if input == "exit" || input == "quit" {
				return
			}
			if out, serr := session.eval(input); serr != nil {
				infoLogger.Println("error:", serr)
			} else if out != "" {
				infoLogger.Println(out)
			}
		}
	},
}

type exploreSession struct {
	envs  map[string]*scope.Env
	sizer *sizeof.Scanner
}

func newExploreSession() *exploreSession {
	global := scope.New("global", nil)
	return &exploreSession{
		envs:  map[string]*scope.Env{"global": global},
		sizer: sizeof.New(),
	}
}

func (s *exploreSession) env(name string) (*scope.Env, error) {
	env, ok := s.envs[name]
	if !ok {
		return nil, fmt.Errorf("no environment %q", name)
	}
	return env, nil
}

func (s *exploreSession) eval(input string) (string, error) {
	fields := strings.Fields(input)
	verb, rest := fields[0], fields[1:]

	switch verb {
	case "help":
		return exploreHelp, nil

	case "env":
		if len(rest) < 1 {
			return "", fmt.Errorf("usage: env <name> [parent]")
		}
		parentName := "global"
		if len(rest) > 1 {
			parentName = rest[1]
		}
		if _, dup := s.envs[rest[0]]; dup {
			return "", fmt.Errorf("environment %q exists already", rest[0])
		}
		parent, err := s.env(parentName)
		if err != nil {
			return "", err
		}
		s.envs[rest[0]] = scope.New(rest[0], parent)
		return fmt.Sprintf("created %q under %q", rest[0], parentName), nil

	case "define", "assign", "modify":
		if len(rest) < 3 {
			return "", fmt.Errorf("usage: %s <env> <name> <value>", verb)
		}
		env, err := s.env(rest[0])
		if err != nil {
			return "", err
		}
		var value interface{}
		raw := strings.Join(rest[2:], " ")
		if err := jsoniter.UnmarshalFromString(raw, &value); err != nil {
			return "", fmt.Errorf("value %q is not valid JSON: %v", raw, err)
		}
		switch verb {
		case "define":
			err = env.Define(rest[1], value)
		case "assign":
			err = env.Assign(rest[1], value)
		case "modify":
			err = env.Modify(rest[1], func(interface{}) interface{} { return value })
		}
		if err != nil {
			return "", err
		}
		return "", nil

	case "alias":
		if len(rest) != 3 {
			return "", fmt.Errorf("usage: alias <env> <dst> <src>")
		}
		env, err := s.env(rest[0])
		if err != nil {
			return "", err
		}
		return "", env.Alias(rest[1], rest[2])

	case "get":
		env, name, err := s.envAndName(verb, rest)
		if err != nil {
			return "", err
		}
		value, err := env.Get(name)
		if err != nil {
			return "", err
		}
		return jsoniter.MarshalToString(value)

	case "where":
		env, name, err := s.envAndName(verb, rest)
		if err != nil {
			return "", err
		}
		home, err := env.Where(name)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s is bound in %q", name, home.Name()), nil

	case "refs":
		env, name, err := s.envAndName(verb, rest)
		if err != nil {
			return "", err
		}
		refs, err := env.Refs(name)
		if err != nil {
			return "", err
		}
		if refs > 1 {
			return fmt.Sprintf("%s: shared (more than one binding)", name), nil
		}
		return fmt.Sprintf("%s: 1 binding", name), nil

	case "size":
		env, name, err := s.envAndName(verb, rest)
		if err != nil {
			return "", err
		}
		value, err := env.Get(name)
		if err != nil {
			return "", err
		}
		report, err := s.sizer.Of(value)
		if err != nil {
			return "", err
		}
		return report.String(), nil

	case "dump":
		names := make([]string, 0, len(s.envs))
		for name := range s.envs {
			names = append(names, name)
		}
		sort.Strings(names)
		var sb strings.Builder
		for _, envName := range names {
			env := s.envs[envName]
			parent := "-"
			if env.Parent() != nil {
				parent = env.Parent().Name()
			}
			fmt.Fprintf(&sb, "%s (parent: %s)\n", envName, parent)
			for _, name := range env.Names() {
				refs, rerr := env.Refs(name)
				if rerr != nil {
					continue
				}
				var bytes int64
				if value, gerr := env.Get(name); gerr == nil {
					if report, serr := s.sizer.Of(value); serr == nil {
						bytes = report.TotalBytes
					}
				}
				fmt.Fprintf(&sb, "  %s refs=%d bytes=%d\n", name, refs, bytes)
			}
		}
		return strings.TrimRight(sb.String(), "\n"), nil

	case "snapshot":
		snap := memtrack.Snapshot()
		return snap.String(), nil

	default:
		return "", fmt.Errorf("unknown command %q, try \"help\"", verb)
	}
}

func (s *exploreSession) envAndName(verb string, rest []string) (*scope.Env, string, error) {
	if len(rest) != 2 {
		return nil, "", fmt.Errorf("usage: %s <env> <name>", verb)
	}
	env, err := s.env(rest[0])
	if err != nil {
		return nil, "", err
	}
	return env, rest[1], nil
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
