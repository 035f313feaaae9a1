package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regset/pkg/types"
)

var kindGrammar = map[types.ValueKind]string{
	types.KindString:       "text, taken verbatim",
	types.KindExpandString: "text with %VAR% references, stored unexpanded",
	types.KindBinary:       "bytes separated by ',', each decimal or 0x hex",
	types.KindDWord:        "decimal int32 or 0x hex up to 32 bits",
	types.KindMultiString:  "strings separated by '|'",
	types.KindQWord:        "decimal int64 or 0x hex up to 64 bits",
}

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the supported value types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTypes()
		},
	}
}

func runTypes() error {
	if jsonOut {
		out := make([]map[string]interface{}, 0, len(types.Kinds))
		for _, k := range types.Kinds {
			out = append(out, map[string]interface{}{
				"name":    k.String(),
				"reg":     k.RegName(),
				"id":      uint32(k),
				"grammar": kindGrammar[k],
			})
		}
		return printJSON(out)
	}

	for _, k := range types.Kinds {
		printInfo("%-13s %-14s %s\n", k.String(), k.RegName(), kindGrammar[k])
	}
	return nil
}
