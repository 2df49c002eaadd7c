package mlpad

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"

	"go.jetpack.io/mlpad/goutil"
	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

const defaultJobWait = 2 * time.Hour

// SubmitPipelines submits one pipeline job per pipeline of the config,
// wired to the latest version of each component it uses.
func (p *Pad) SubmitPipelines(
	ctx context.Context,
	ws MLWorkspace,
	opts *PipelineOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.submitPipelines(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) submitPipelines(
	ctx context.Context,
	ws MLWorkspace,
	opts *PipelineOptions,
	report *reconcile.Report,
) error {
	doc, err := p.load(&opts.ApplyOptions)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadPipelines(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Pipelines in %s", ws.Workspace())

	eachEntry(ctx, "pipeline", report, entries, func(e mlconfig.Entry[mlconfig.Pipeline]) reconcile.Outcome {
		return submitPipeline(ctx, ws, opts, &e.Spec)
	})
	return nil
}

func submitPipeline(
	ctx context.Context,
	ws MLWorkspace,
	opts *PipelineOptions,
	pl *mlconfig.Pipeline,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: pl.Name, Action: reconcile.Create}

	versions, err := latestComponentVersions(ctx, ws, pl.Components())
	if err != nil {
		out.Err = err
		return out
	}
	job, err := pipelineJob(ws.Workspace(), pl, versions)
	if err != nil {
		out.Err = err
		return out
	}
	if opts.DryRun {
		return dryRun(out)
	}

	name := uuid.NewString()
	if _, err := ws.CreateJob(ctx, name, job); err != nil {
		out.Err = err
		return out
	}
	out.Reason = "submitted job " + name
	padlog.Events("mlpad.pipeline").Infof("Submitted pipeline %s as job %s in experiment %s", pl.Name, name, pl.ExperimentName)

	if opts.Wait {
		timeout := opts.WaitTimeout
		if timeout == 0 {
			timeout = defaultJobWait
		}
		var status string
		padlog.Logger(ctx).WithSpinnerFuncPrint(func() {
			status, err = ws.WaitForJob(ctx, name, timeout)
		}, "Waiting for job "+name)
		switch {
		case err != nil:
			out.Err = err
		case status != "Completed":
			out.Err = errors.Errorf("job %s finished as %s", name, status)
		default:
			out.Reason += ", completed"
		}
	}
	return out
}

// latestComponentVersions looks up every component concurrently. A
// component that was never registered fails the lookup.
func latestComponentVersions(ctx context.Context, ws MLWorkspace, names []string) (map[string]string, error) {
	var mu sync.Mutex
	versions := make(map[string]string, len(names))
	g, gctx := errgroup.WithContext(ctx)
	for _, name := range names {
		name := name
		g.Go(func() error {
			v, err := ws.LatestVersion(gctx, azml.KindComponent, name)
			if err != nil {
				return err
			}
			if v == "" {
				return errorutil.NewUserErrorf("component %s is not registered", name).
					WithHint("Run `mlpad component apply` first")
			}
			mu.Lock()
			defer mu.Unlock()
			versions[name] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return versions, nil
}

// pipelineJob builds the pipeline job body. Node inputs are passed as
// literal bindings; pipeline outputs are bound back onto the node that
// produces them.
func pipelineJob(ws azml.Workspace, pl *mlconfig.Pipeline, versions map[string]string) (*azml.Job, error) {
	outputBindings := map[string]map[string]any{}
	outputs := map[string]azml.JobOutput{}
	for _, name := range goutil.SortedKeys(pl.Outputs) {
		node, nodeOutput, _ := strings.Cut(pl.Outputs[name], ".")
		if outputBindings[node] == nil {
			outputBindings[node] = map[string]any{}
		}
		outputBindings[node][nodeOutput] = map[string]any{
			"type":  "literal",
			"value": "${{parent.outputs." + name + "}}",
		}
		outputs[name] = azml.JobOutput{JobOutputType: "uri_folder"}
	}

	jobs := map[string]any{}
	for _, nodeName := range goutil.SortedKeys(pl.Jobs) {
		node := pl.Jobs[nodeName]
		values, err := node.InputValues()
		if err != nil {
			return nil, err
		}
		inputs := map[string]any{}
		for k, v := range values {
			inputs[k] = map[string]any{"job_input_type": "literal", "value": v}
		}
		spec := map[string]any{
			"type":        "command",
			"name":        nodeName,
			"componentId": ws.ComponentVersionID(node.Component, versions[node.Component]),
			"inputs":      inputs,
		}
		if node.DisplayName != "" {
			spec["display_name"] = node.DisplayName
		}
		if node.Compute != "" {
			spec["computeId"] = ws.ComputeID(node.Compute)
		}
		if bindings, ok := outputBindings[nodeName]; ok {
			spec["outputs"] = bindings
		}
		jobs[nodeName] = spec
	}

	inputs := map[string]azml.JobInput{}
	for name, in := range pl.Inputs {
		inputs[name] = azml.JobInput{JobInputType: in.Type, URI: in.Path, Mode: in.Mode}
	}

	return &azml.Job{Properties: azml.JobProperties{
		JobType:        "Pipeline",
		DisplayName:    goutil.Coalesce(pl.DisplayName, pl.Name),
		Description:    pl.Description,
		ExperimentName: pl.ExperimentName,
		Inputs:         inputs,
		Outputs:        outputs,
		Jobs:           jobs,
		Settings:       map[string]any{"default_compute": ws.ComputeID(pl.Compute)},
	}}, nil
}
