package mlpad

import (
	"context"

	"github.com/pkg/errors"

	"go.jetpack.io/mlpad/goutil/errorutil"
	"go.jetpack.io/mlpad/mlcli/hook"
	"go.jetpack.io/mlpad/mlcli/mlconfig"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/padlog"
	"go.jetpack.io/mlpad/pkg/reconcile"
)

// dateVersionLayout versions data assets registered without an explicit
// version.
const dateVersionLayout = "20060102"

// ApplyData registers the data assets of the config. Versions are
// immutable: an existing version pointing elsewhere fails the entry.
func (p *Pad) ApplyData(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
) (*reconcile.Report, error) {
	var err error
	report := reconcile.NewReport()
	lifecycle(ctx, opts.LifecycleHook, func() (hook.LifecycleOutput, error) {
		err = p.applyData(ctx, ws, opts, report)
		return report, err
	})
	return report, err
}

func (p *Pad) applyData(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
	report *reconcile.Report,
) error {
	doc, err := p.load(opts)
	if err != nil {
		return err
	}
	entries, err := mlconfig.LoadData(doc)
	if err != nil {
		return err
	}
	padlog.Logger(ctx).HeaderPrintf("Data assets in %s", ws.Workspace())

	cache := newDataCache(ws)
	eachEntry(ctx, "data", report, entries, func(e mlconfig.Entry[mlconfig.Data]) reconcile.Outcome {
		return p.reconcileData(ctx, ws, opts, cache, &e.Spec)
	})
	return nil
}

func (p *Pad) reconcileData(
	ctx context.Context,
	ws MLWorkspace,
	opts *ApplyOptions,
	cache *dataCache,
	d *mlconfig.Data,
) reconcile.Outcome {
	out := reconcile.Outcome{Name: d.Name}

	decision, err := p.decideData(ctx, cache, d)
	if err != nil {
		out.Err = err
		return out
	}
	out.Version = decision.Version
	out.Action = decision.Action
	out.Reason = decision.Reason
	if decision.Action == reconcile.Skip {
		return out
	}
	if opts.DryRun {
		return dryRun(out)
	}

	asset := &azml.DataVersion{Properties: azml.DataVersionProperties{
		DataType:    d.Type,
		DataURI:     d.Path,
		Description: d.Description,
		Tags:        d.Tags,
	}}
	if err := ws.CreateDataVersion(ctx, d.Name, decision.Version, asset); err != nil {
		out.Err = err
		return out
	}
	cache.created(d.Name, decision.Version, asset)
	return out
}

func (p *Pad) decideData(ctx context.Context, cache *dataCache, d *mlconfig.Data) (reconcile.Decision, error) {
	if d.Version.IsAuto() {
		latest, err := cache.latest(ctx, d.Name)
		if err != nil {
			return reconcile.Decision{}, err
		}
		if latest == "" {
			return reconcile.Decision{Action: reconcile.Create, Version: "1"}, nil
		}
		current, err := cache.version(ctx, d.Name, latest)
		if err != nil {
			return reconcile.Decision{}, err
		}
		if current != nil && current.Properties.DataURI == d.Path {
			dec := reconcile.SkipBecause("latest version already points at %s", d.Path)
			dec.Version = latest
			return dec, nil
		}
		next, err := reconcile.NextVersion(latest)
		if err != nil {
			return reconcile.Decision{}, err
		}
		return reconcile.Decision{Action: reconcile.Create, Version: next, Reason: "path changed"}, nil
	}

	version := d.Version.String()
	if version == "" {
		version = p.now().Format(dateVersionLayout)
	}
	existing, err := cache.version(ctx, d.Name, version)
	if err != nil {
		return reconcile.Decision{}, err
	}
	if existing == nil {
		return reconcile.Decision{Action: reconcile.Create, Version: version}, nil
	}
	if existing.Properties.DataURI != d.Path {
		return reconcile.Decision{}, errorutil.NewUserErrorf(
			"version %s already exists with path %s", version, existing.Properties.DataURI,
		).WithHint("Data asset versions cannot change. Use a new version or \"auto\"")
	}
	dec := reconcile.SkipBecause("already exists")
	dec.Version = version
	return dec, nil
}

// dataCache remembers what was read from and written to the workspace
// during one run, so a name declared twice is only looked up once.
type dataCache struct {
	ws       MLWorkspace
	latests  map[string]string
	versions map[string]*azml.DataVersion
}

func newDataCache(ws MLWorkspace) *dataCache {
	return &dataCache{
		ws:       ws,
		latests:  map[string]string{},
		versions: map[string]*azml.DataVersion{},
	}
}

func (c *dataCache) latest(ctx context.Context, name string) (string, error) {
	if v, ok := c.latests[name]; ok {
		return v, nil
	}
	v, err := c.ws.LatestVersion(ctx, azml.KindData, name)
	if err != nil {
		return "", err
	}
	c.latests[name] = v
	return v, nil
}

// version returns nil when the version does not exist.
func (c *dataCache) version(ctx context.Context, name, version string) (*azml.DataVersion, error) {
	key := name + ":" + version
	if d, ok := c.versions[key]; ok {
		return d, nil
	}
	d, err := c.ws.GetDataVersion(ctx, name, version)
	if azml.IsNotFound(err) {
		d, err = nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read data %s:%s", name, version)
	}
	c.versions[key] = d
	return d, nil
}

func (c *dataCache) created(name, version string, d *azml.DataVersion) {
	c.versions[name+":"+version] = d
	if cur, ok := c.latests[name]; ok && reconcile.CompareVersions(version, cur) > 0 {
		c.latests[name] = version
	}
}
