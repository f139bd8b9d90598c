package commands

import (
	"context"

	"github.com/alecthomas/kingpin/v2"

	"github.com/vidtree/pybox/internal/conventions"
	"github.com/vidtree/pybox/internal/model"
	"github.com/vidtree/pybox/internal/sink"
)

const defaultJobScript = "Scripts/main.py"

type JobCommand struct {
	Cmd     *kingpin.CmdClause
	rootCmd *RootCommand

	targetDir string
	workDir   string
	envSpecs  []string
	script    string
	params    model.JobParams
}

// NewJobCommand returns the job command.
func NewJobCommand(rootCmd *RootCommand, app *kingpin.Application) *JobCommand {
	c := &JobCommand{rootCmd: rootCmd}

	c.Cmd = app.Command("job", "Run a processing job script with its directories.")
	c.Cmd.Flag("dir", "Installation directory.").Short('d').Default(conventions.DefaultInstallDir).StringVar(&c.targetDir)
	c.Cmd.Flag("workdir", "Working directory for the interpreter.").Short('w').StringVar(&c.workDir)
	c.Cmd.Flag("env", "Environment variables (KEY=VALUE or KEY from current environment). Can be repeated.").Short('e').StringsVar(&c.envSpecs)
	c.Cmd.Flag("script", "Job script path.").Default(defaultJobScript).StringVar(&c.script)
	c.Cmd.Flag("data-dir", "Input data directory.").Required().StringVar(&c.params.DataDir)
	c.Cmd.Flag("video-dir", "Video directory.").Required().StringVar(&c.params.VideoDir)
	c.Cmd.Flag("export-dir", "Export directory.").Required().StringVar(&c.params.ExportDir)
	c.Cmd.Flag("extra", "Extra raw argument appended after the job flags. Can be repeated.").StringsVar(&c.params.Extra)

	return c
}

func (c JobCommand) Name() string { return c.Cmd.FullCommand() }

func (c JobCommand) Run(ctx context.Context) error {
	svc, closeRepo, err := newRunService(ctx, c.rootCmd, c.workDir, c.envSpecs)
	if err != nil {
		return err
	}
	defer closeRepo()

	out := sink.NewWriterSink(c.rootCmd.Stdout)
	rec, err := svc.RunJob(ctx, model.Installation{Root: c.targetDir}, c.script, c.params, out)

	return runResult(rec, err)
}
