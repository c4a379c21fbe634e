package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/go-secded/blockfile"
	"github.com/arloliu/go-secded/hamming"
)

func newInspectCmd(_ *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <block>",
		Short: "Show the header and error status of one block",
		Long: `Parse a block file and print its header as stored, the result of the SECDED
check, and, when the block is decodable, the header after correction.

The block file is not modified.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := blockfile.ReadBlock(args[0])
			if err != nil {
				return err
			}

			p, err := hamming.Parse(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			check := p.Check()
			fmt.Fprintf(out, "stored:  %s\n", p)
			fmt.Fprintf(out, "check:   %s\n", check)

			if check.Status == hamming.UncorrectableDoubleError {
				return nil
			}

			payload, err := p.ToPayload()
			if err != nil {
				fmt.Fprintf(out, "decode:  %v\n", err)
				return nil
			}
			fmt.Fprintf(out, "decoded: %s\n", p)
			fmt.Fprintf(out, "payload: %d bytes\n", len(payload))

			return nil
		},
	}
}
