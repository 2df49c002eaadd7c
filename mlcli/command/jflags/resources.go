package jflags

import (
	"github.com/spf13/cobra"
)

func NewComputeCmd() *ComputeCmd {
	return &ComputeCmd{}
}

func RegisterComputeFlags(cmd *cobra.Command, flags *ComputeCmd) {
	RegisterFileFlag(cmd, &flags.File)
	RegisterWaitFlags(cmd, &flags.Wait, "new computes finish provisioning")
}

type ComputeCmd struct {
	File
	Wait
}

func NewEnvironmentCmd() *EnvironmentCmd {
	return &EnvironmentCmd{}
}

func RegisterEnvironmentFlags(cmd *cobra.Command, flags *EnvironmentCmd) {
	RegisterFileFlag(cmd, &flags.File)
	cmd.Flags().BoolVar(
		&flags.writeCondaFiles,
		"write-conda-files",
		false,
		"Write each rendered conda file next to the config as <name>.conda.yaml",
	)
}

type EnvironmentCmd struct {
	File

	writeCondaFiles bool
}

func (f *EnvironmentCmd) WriteCondaFiles() bool {
	return f.writeCondaFiles
}

func NewPipelineCmd() *PipelineCmd {
	return &PipelineCmd{}
}

func RegisterPipelineFlags(cmd *cobra.Command, flags *PipelineCmd) {
	RegisterFileFlag(cmd, &flags.File)
	RegisterWaitFlags(cmd, &flags.Wait, "every submitted job finishes")
}

type PipelineCmd struct {
	File
	Wait
}

func NewApplyCmd() *ApplyCmd {
	return &ApplyCmd{}
}

func RegisterApplyFlags(cmd *cobra.Command, flags *ApplyCmd) {
	cmd.Flags().BoolVar(
		&flags.submitPipelines,
		"submit-pipelines",
		false,
		"Also submit the pipelines file. Every submission starts a new job",
	)
	RegisterWaitFlags(cmd, &flags.Wait, "new computes are provisioned and submitted jobs finish")
}

type ApplyCmd struct {
	Wait

	submitPipelines bool
}

func (f *ApplyCmd) SubmitPipelines() bool {
	return f.submitPipelines
}
