package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"osident/internal/identity"
	"osident/internal/native"
)

type platformInfo struct {
	OS          string `json:"os" yaml:"os"`
	Arch        string `json:"arch" yaml:"arch"`
	Family      string `json:"family" yaml:"family"`
	Backend     string `json:"backend" yaml:"backend"`
	WideUIDArg  bool   `json:"wide_uid_arg" yaml:"wide_uid_arg"`
	Cgo         bool   `json:"cgo" yaml:"cgo"`
	TokenPolicy string `json:"token_policy" yaml:"token_policy"`
}

func newPlatformCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "platform",
		Short: "Show the host platform and the selected identity backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := platformInfo{
				OS:          runtime.GOOS,
				Arch:        runtime.GOARCH,
				Family:      string(identity.HostFamily()),
				Backend:     a.resolver.Backend(),
				WideUIDArg:  native.WideUIDArg,
				Cgo:         native.CgoEnabled,
				TokenPolicy: string(a.cfg.TokenPolicy),
			}
			return a.render(cmd.OutOrStdout(), info, func() [][2]string {
				return [][2]string{
					{"OS", info.OS},
					{"ARCH", info.Arch},
					{"FAMILY", info.Family},
					{"BACKEND", info.Backend},
					{"WIDE UID ARG", fmt.Sprint(info.WideUIDArg)},
					{"CGO", fmt.Sprint(info.Cgo)},
					{"TOKEN POLICY", info.TokenPolicy},
				}
			})
		},
	}
}
