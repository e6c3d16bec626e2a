package sync

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adamancini/brewfile/internal/brew"
	"github.com/adamancini/brewfile/internal/diff"
	"github.com/adamancini/brewfile/internal/logging"
	"github.com/adamancini/brewfile/internal/manifest"
	"github.com/adamancini/brewfile/internal/types"
)

// Install executes an install plan in order. Declarations are manifest
// bookkeeping and are skipped. The first failed fatal action stops the run
// and its *brew.ExitError is returned.
func (e *Executor) Install(plan *diff.Plan) (*Result, error) {
	logger := logging.GetLogger("sync")
	result := &Result{}

	for _, a := range plan.Actions {
		var err error
		switch a.Op {
		case diff.OpRun:
			err = e.finish(a, e.echo(a).Shell(a.Name), result)
		case diff.OpTap:
			err = e.finish(a, e.echo(a).Tap(a.Name), result)
		case diff.OpInstall, diff.OpReinstall:
			err = e.install(a, result)
		default:
			logger.Debug().Str("op", string(a.Op)).Str("name", a.Name).Msg("Skipping action")
		}
		if err != nil {
			return result, err
		}
	}

	if e.Bootstrapped() {
		result.Reinit = true
	}
	return result, nil
}

func (e *Executor) install(a diff.Action, result *Result) error {
	switch a.Kind {
	case types.KindTap:
		return e.finish(a, e.echo(a).Tap(a.Name), result)

	case types.KindCask:
		if err := e.ensureCaskTap(); err != nil {
			return err
		}
		return e.finish(a, e.echo(a).Install(a.Kind, a.Name, a.Options), result)

	case types.KindPip, types.KindGem:
		state, formula := &e.pip, e.opts.PipCarrier
		if a.Kind == types.KindGem {
			state, formula = &e.gem, e.opts.GemCarrier
		}
		if err := e.ensureFormula(state, formula); err != nil {
			return err
		}
		return e.finish(a, e.echo(a).Install(a.Kind, a.Name, a.Options), result)

	case types.KindAppStore:
		return e.installApp(a, result)
	}

	var res brew.Result
	if a.Op == diff.OpReinstall {
		res = e.echo(a).Reinstall(a.Name, a.Options)
	} else {
		res = e.echo(a).Install(types.KindFormula, a.Name, a.Options)
	}
	if !res.OK() {
		e.console.Warn(fmt.Sprintf("Can not install %s. Please check the package name.\n"+
			"%s may be installed by using web direct formula.", a.Name, a.Name), 0)
		a.Fatal = false
		return e.finish(a, res, result)
	}
	e.followLinks(res.Lines)
	if a.Op == diff.OpReinstall {
		result.Reinit = true
	}
	return e.finish(a, res, result)
}

func (e *Executor) installApp(a diff.Action, result *Result) error {
	id, name := manifest.SplitAppStore(a.Name)
	if id == "" {
		e.console.Warn("No id or wrong id information was given for AppStore App: "+name+".\n"+
			"Please install it manually.", 0)
		result.Skipped++
		result.Attention = append(result.Attention, "appstore: "+name)
		return nil
	}

	e.console.Info("Installing "+name, 2)
	if e.ensureMas() {
		return e.finish(a, e.echo(a).Install(a.Kind, a.Name, ""), result)
	}
	e.console.Info("Please install "+name+" from AppStore.", 0)
	a.Fatal = false
	return e.finish(a, e.provider.Run([]string{"open", "-W", "macappstore://itunes.apple.com/app/id" + id}), result)
}

// followLinks runs the "ln -s" and "brew linkapps" hints an install printed.
func (e *Executor) followLinks(lines []string) {
	if !e.opts.Link {
		return
	}
	for _, l := range lines {
		if i := strings.Index(l, "ln -s"); i >= 0 {
			var args []string
			for _, f := range strings.Fields(l[i:]) {
				if strings.HasPrefix(f, "~/") && e.opts.Home != "" {
					f = filepath.Join(e.opts.Home, f[2:])
				}
				args = append(args, f)
			}
			e.console.Info("$ "+strings.Join(args, " "), 1)
			e.provider.Run(args)
		}
		if strings.Contains(l, "brew linkapps") {
			e.console.Info("$ brew linkapps", 1)
			e.provider.Run([]string{"brew", "linkapps"})
		}
	}
}

// Cleanup executes a cleanup plan. In dry-run mode the equivalent commands
// are printed and nothing is removed.
func (e *Executor) Cleanup(plan *diff.Plan) (*Result, error) {
	result := &Result{}
	if e.opts.DryRun {
		e.console.Banner("# This is dry run.", 1)
	}

	section := ""
	for _, a := range plan.Actions {
		if s := cleanupSection(a); s != "" && s != section {
			section = s
			e.console.Banner(s, 1)
		}

		if e.opts.DryRun {
			for _, c := range a.Commands() {
				e.console.Print(c)
				result.record(Operation{Kind: a.Kind, Name: a.Name, Action: string(a.Op), Command: c, Success: true})
			}
			continue
		}

		var err error
		switch a.Op {
		case diff.OpUninstall:
			if a.Kind == types.KindAppStore {
				for _, p := range a.Paths {
					e.console.Info("$ sudo rm -rf '"+p+"'", 1)
					if err = e.finish(a, e.provider.RemoveApp(p), result); err != nil {
						break
					}
				}
				break
			}
			err = e.finish(a, e.echo(a).Uninstall(a.Kind, a.Name, a.IgnoreDeps), result)
		case diff.OpUntap:
			err = e.finish(a, e.echo(a).Untap(a.Name), result)
		case diff.OpCleanup:
			e.echo(a)
			e.provider.Run([]string{"brew", "cleanup", "--force"})
			e.provider.Run([]string{"rm", "-rf", a.Name})
		}
		if err != nil {
			return result, err
		}
	}

	if e.opts.DryRun {
		e.dryRunHint("clean")
	}
	return result, nil
}

// CleanNonRequest uninstalls leaves that were installed as dependencies
// rather than on request.
func (e *Executor) CleanNonRequest() (*Result, error) {
	result := &Result{}
	if e.opts.DryRun {
		e.console.Banner("# This is dry run.", 1)
	}

	info, err := e.provider.FormulaInfo()
	if err != nil {
		return nil, fmt.Errorf("failed to read formula info: %w", err)
	}
	leaves, err := e.provider.Leaves()
	if err != nil {
		return nil, fmt.Errorf("failed to list leaves: %w", err)
	}

	names := make([]string, 0, len(info))
	for p := range info {
		names = append(names, p)
	}
	sort.Strings(names)

	for _, p := range names {
		if !contains(leaves, p) || !info[p].NotOnRequest() {
			continue
		}
		a := diff.Action{Kind: types.KindFormula, Op: diff.OpUninstall, Name: p, Reason: "not installed on request"}
		if e.opts.DryRun {
			e.console.Print("brew uninstall " + p)
			result.record(Operation{Kind: a.Kind, Name: p, Action: string(a.Op), Command: "brew uninstall " + p, Success: true})
			continue
		}
		if err := e.finish(a, e.echo(a).Uninstall(types.KindFormula, p, false), result); err != nil {
			return result, err
		}
	}

	if e.opts.DryRun {
		e.dryRunHint("clean_non_request")
	}
	return result, nil
}

func (e *Executor) dryRunHint(command string) {
	e.console.Banner("# This is dry run.\n"+
		"# If you want to enforce cleanup, use '-C':\n"+
		"#     $ "+e.opts.Program+" "+command+" -C", 1)
}

// echo prints the commands of a before it runs and returns the provider.
func (e *Executor) echo(a diff.Action) brew.Provider {
	for _, c := range a.Commands() {
		e.console.Info("$ "+c, 1)
	}
	return e.provider
}

// finish records the outcome of a. A failed fatal action returns its
// *brew.ExitError.
func (e *Executor) finish(a diff.Action, res brew.Result, result *Result) error {
	op := Operation{
		Kind:        a.Kind,
		Name:        a.Name,
		Action:      string(a.Op),
		Description: a.Reason,
		Command:     res.Command,
		Success:     res.OK(),
	}

	if !res.OK() {
		op.Error = fmt.Sprintf("exit code %d", res.Code)
		if len(res.Lines) > 0 {
			op.Error += ": " + res.Lines[len(res.Lines)-1]
		}
		result.Failed++
		result.record(op)
		logger := logging.GetLogger("sync")
		logger.Debug().Str("command", res.Command).Int("code", res.Code).Msg("Command failed")
		if a.Fatal {
			e.console.Err(fmt.Sprintf("Failed: %s (exit code %d)", res.Command, res.Code), 0)
			return res.Check()
		}
		return nil
	}

	switch a.Op {
	case diff.OpInstall, diff.OpTap:
		result.Installed++
	case diff.OpReinstall:
		result.Reinstalled++
	case diff.OpUninstall, diff.OpUntap:
		result.Removed++
	}
	result.record(op)
	return nil
}

func cleanupSection(a diff.Action) string {
	if a.Op == diff.OpCleanup {
		return "# Clean up cache"
	}
	switch a.Kind {
	case types.KindAppStore:
		return "# Clean up App Store applications"
	case types.KindCask:
		return "# Clean up cask packages"
	case types.KindPip:
		return "# Clean up pip packages"
	case types.KindGem:
		return "# Clean up gem packages"
	case types.KindFormula:
		return "# Clean up brew packages"
	case types.KindTap:
		return "# Clean up tap packages"
	}
	return ""
}
