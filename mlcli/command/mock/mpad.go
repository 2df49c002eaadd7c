package mock

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go.jetpack.io/mlpad/mlpad"
	"go.jetpack.io/mlpad/pkg/azml"
	"go.jetpack.io/mlpad/pkg/reconcile"
	"go.jetpack.io/mlpad/pkg/schemacheck"
)

// MockPad records nothing on its own. Set the Func field of the method a
// test exercises; the others return empty results.
type MockPad struct {
	mock.Mock
	ApplyComputeFunc         func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ComputeOptions) (*reconcile.Report, error)
	ApplyDataFunc            func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyOptions) (*reconcile.Report, error)
	ApplyEnvironmentsFunc    func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.EnvironmentOptions) (*reconcile.Report, error)
	ApplyComponentsFunc      func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyOptions) (*reconcile.Report, error)
	SubmitPipelinesFunc      func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.PipelineOptions) (*reconcile.Report, error)
	ApplyActionGroupsFunc    func(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error)
	ApplyAlertsFunc          func(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error)
	ApplyProcessingRulesFunc func(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error)
	ApplyFunc                func(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyAllOptions) (*reconcile.Report, error)
	DeployInfraFunc          func(ctx context.Context, opts *mlpad.DeployOptions) (*mlpad.DeployOutput, error)
	LoginFunc                func(ctx context.Context, opts *mlpad.LoginOptions) (*mlpad.LoginOutput, error)
	EnvSetFunc               func(ctx context.Context, opts *mlpad.EnvSetOptions) (*mlpad.EnvSetOutput, error)
	EnvCheckFunc             func(ctx context.Context, path string) (azml.Workspace, error)
	ValidateFunc             func(ctx context.Context, opts *mlpad.ValidateOptions) (*schemacheck.Report, error)
	CreateMLTableFunc        func(ctx context.Context, opts *mlpad.MLTableOptions) (string, error)
	WatchValidateFunc        func(ctx context.Context, opts *mlpad.ValidateOptions) error
}

var _ mlpad.MLPad = (*MockPad)(nil)

func (p *MockPad) ApplyCompute(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ComputeOptions) (*reconcile.Report, error) {
	if p.ApplyComputeFunc != nil {
		return p.ApplyComputeFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyData(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyOptions) (*reconcile.Report, error) {
	if p.ApplyDataFunc != nil {
		return p.ApplyDataFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyEnvironments(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.EnvironmentOptions) (*reconcile.Report, error) {
	if p.ApplyEnvironmentsFunc != nil {
		return p.ApplyEnvironmentsFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyComponents(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyOptions) (*reconcile.Report, error) {
	if p.ApplyComponentsFunc != nil {
		return p.ApplyComponentsFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) SubmitPipelines(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.PipelineOptions) (*reconcile.Report, error) {
	if p.SubmitPipelinesFunc != nil {
		return p.SubmitPipelinesFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyActionGroups(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error) {
	if p.ApplyActionGroupsFunc != nil {
		return p.ApplyActionGroupsFunc(ctx, m, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyAlerts(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error) {
	if p.ApplyAlertsFunc != nil {
		return p.ApplyAlertsFunc(ctx, m, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) ApplyProcessingRules(ctx context.Context, m mlpad.Monitor, opts *mlpad.MonitorOptions) (*reconcile.Report, error) {
	if p.ApplyProcessingRulesFunc != nil {
		return p.ApplyProcessingRulesFunc(ctx, m, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) Apply(ctx context.Context, ws mlpad.MLWorkspace, opts *mlpad.ApplyAllOptions) (*reconcile.Report, error) {
	if p.ApplyFunc != nil {
		return p.ApplyFunc(ctx, ws, opts)
	}
	return reconcile.NewReport(), nil
}

func (p *MockPad) DeployInfra(ctx context.Context, opts *mlpad.DeployOptions) (*mlpad.DeployOutput, error) {
	if p.DeployInfraFunc != nil {
		return p.DeployInfraFunc(ctx, opts)
	}
	return &mlpad.DeployOutput{}, nil
}

func (p *MockPad) Login(ctx context.Context, opts *mlpad.LoginOptions) (*mlpad.LoginOutput, error) {
	if p.LoginFunc != nil {
		return p.LoginFunc(ctx, opts)
	}
	return &mlpad.LoginOutput{}, nil
}

func (p *MockPad) EnvSet(ctx context.Context, opts *mlpad.EnvSetOptions) (*mlpad.EnvSetOutput, error) {
	if p.EnvSetFunc != nil {
		return p.EnvSetFunc(ctx, opts)
	}
	return &mlpad.EnvSetOutput{}, nil
}

func (p *MockPad) EnvCheck(ctx context.Context, path string) (azml.Workspace, error) {
	if p.EnvCheckFunc != nil {
		return p.EnvCheckFunc(ctx, path)
	}
	return azml.Workspace{}, nil
}

func (p *MockPad) Validate(ctx context.Context, opts *mlpad.ValidateOptions) (*schemacheck.Report, error) {
	if p.ValidateFunc != nil {
		return p.ValidateFunc(ctx, opts)
	}
	return &schemacheck.Report{}, nil
}

func (p *MockPad) CreateMLTable(ctx context.Context, opts *mlpad.MLTableOptions) (string, error) {
	if p.CreateMLTableFunc != nil {
		return p.CreateMLTableFunc(ctx, opts)
	}
	return "", nil
}

func (p *MockPad) WatchValidate(ctx context.Context, opts *mlpad.ValidateOptions) error {
	if p.WatchValidateFunc != nil {
		return p.WatchValidateFunc(ctx, opts)
	}
	return nil
}
