package main

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/bher20/tagihanpln/internal/api"
	"github.com/bher20/tagihanpln/internal/app"
	"github.com/bher20/tagihanpln/internal/inquiry"
	"github.com/bher20/tagihanpln/pkg/providers/shared"
	"github.com/bher20/tagihanpln/pkg/providers/simulator"
)

var (
	inquireSimulate bool
	inquireOut      string
)

var inquireCmd = &cobra.Command{
	Use:   "inquire <customer-number>",
	Short: "Check one bill and print the API response",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var res inquiry.Result
		if inquireSimulate {
			res = simulator.New().Inquire(cmd.Context(), args[0])
		} else {
			a, err := app.New(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()
			res = a.Inquirer.Inquire(cmd.Context(), args[0])
		}
		return printResponse(cmd.OutOrStdout(), res, inquireOut)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate <customer-number>",
	Short: "Print the simulated answer for a test customer number",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResponse(cmd.OutOrStdout(), simulator.New().Inquire(cmd.Context(), args[0]), "")
	},
}

// printResponse writes the wire shape of res to w, or atomically to path
// when set.
func printResponse(w io.Writer, res inquiry.Result, path string) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(api.NewInquiryResponse(res)); err != nil {
		return eris.Wrap(err, "encode response")
	}
	if path != "" {
		return shared.WriteFileAtomically(path, &buf)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func init() {
	inquireCmd.Flags().BoolVar(&inquireSimulate, "simulate", false, "answer from the simulator instead of real providers")
	inquireCmd.Flags().StringVar(&inquireOut, "out", "", "write the response to a file instead of stdout")
	rootCmd.AddCommand(inquireCmd, simulateCmd)
}
