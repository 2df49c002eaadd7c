package azml

import (
	"context"

	"github.com/pkg/errors"
)

// AssetKind is the path segment of a versioned workspace asset.
type AssetKind string

const (
	KindData        AssetKind = "data"
	KindEnvironment AssetKind = "environments"
	KindComponent   AssetKind = "components"
)

type assetContainer struct {
	Properties struct {
		LatestVersion string `json:"latestVersion"`
		NextVersion   string `json:"nextVersion"`
	} `json:"properties"`
}

// LatestVersion returns the newest registered version of an asset, or ""
// when the asset has never been registered.
func (c *Client) LatestVersion(ctx context.Context, kind AssetKind, name string) (string, error) {
	var container assetContainer
	err := c.get(ctx, c.ws.path(string(kind), name), &container)
	if IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s %s", kind, name)
	}
	return container.Properties.LatestVersion, nil
}

func (c *Client) getVersion(ctx context.Context, kind AssetKind, name, version string, out any) error {
	return c.get(ctx, c.ws.path(string(kind), name, "versions", version), out)
}

func (c *Client) putVersion(ctx context.Context, kind AssetKind, name, version string, body any) error {
	return errors.Wrapf(
		c.put(ctx, c.ws.path(string(kind), name, "versions", version), body, nil),
		"failed to create %s %s:%s", kind, name, version,
	)
}

// Data assets.

type DataVersion struct {
	Properties DataVersionProperties `json:"properties"`
}

type DataVersionProperties struct {
	// uri_file, uri_folder or mltable.
	DataType    string            `json:"dataType"`
	DataURI     string            `json:"dataUri"`
	Description string            `json:"description,omitempty"`
	Tags        map[string]string `json:"tags,omitempty"`
}

func (c *Client) GetDataVersion(ctx context.Context, name, version string) (*DataVersion, error) {
	d := &DataVersion{}
	if err := c.getVersion(ctx, KindData, name, version, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (c *Client) CreateDataVersion(ctx context.Context, name, version string, d *DataVersion) error {
	return c.putVersion(ctx, KindData, name, version, d)
}

// Environments.

type EnvironmentVersion struct {
	Properties EnvironmentVersionProperties `json:"properties"`
}

type EnvironmentVersionProperties struct {
	Image       string        `json:"image,omitempty"`
	CondaFile   string        `json:"condaFile,omitempty"`
	Build       *BuildContext `json:"build,omitempty"`
	Description string        `json:"description,omitempty"`
	OSType      string        `json:"osType,omitempty"`
}

type BuildContext struct {
	ContextURI     string `json:"contextUri"`
	DockerfilePath string `json:"dockerfilePath,omitempty"`
}

func (c *Client) GetEnvironmentVersion(ctx context.Context, name, version string) (*EnvironmentVersion, error) {
	e := &EnvironmentVersion{}
	if err := c.getVersion(ctx, KindEnvironment, name, version, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (c *Client) CreateEnvironmentVersion(ctx context.Context, name, version string, e *EnvironmentVersion) error {
	return c.putVersion(ctx, KindEnvironment, name, version, e)
}

// Components.

type ComponentVersion struct {
	ID         string                     `json:"id,omitempty"`
	Properties ComponentVersionProperties `json:"properties"`
}

type ComponentVersionProperties struct {
	// ComponentSpec is the command component definition in the CLI v2
	// schema (name, version, type, inputs, outputs, command, code,
	// environment).
	ComponentSpec map[string]any `json:"componentSpec"`
	Description   string         `json:"description,omitempty"`
}

func (c *Client) GetComponentVersion(ctx context.Context, name, version string) (*ComponentVersion, error) {
	comp := &ComponentVersion{}
	if err := c.getVersion(ctx, KindComponent, name, version, comp); err != nil {
		return nil, err
	}
	return comp, nil
}

func (c *Client) CreateComponentVersion(ctx context.Context, name, version string, comp *ComponentVersion) error {
	return c.putVersion(ctx, KindComponent, name, version, comp)
}
