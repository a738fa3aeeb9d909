package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfrund/tankbot/internal/protocol"
)

var decodeStrict bool

var decodeCmd = &cobra.Command{
	Use:   "decode",
	Short: "Decode protocol frames read from stdin",
	Long: `Read one JSON frame per line from stdin and print, for each, the message type it
decodes to together with the decoded fields. Frames of unknown types are reported as
unrecognized; malformed frames are reported with the offending field.

Examples:
  echo '{"type":"RoundStartedEvent","roundNumber":1}' | tankbot decode
  jq -c .frame session.jsonl | tankbot decode --strict`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		scanner := bufio.NewScanner(cmd.InOrStdin())
		scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

		var failed int
		for line := 1; scanner.Scan(); line++ {
			frame := scanner.Bytes()
			if len(frame) == 0 {
				continue
			}
			msg, err := protocol.Decode(frame)
			if err != nil {
				failed++
				fmt.Fprintf(out, "%d\terror\t%v\n", line, err)
				continue
			}
			if u, ok := msg.(*protocol.Unrecognized); ok {
				fmt.Fprintf(out, "%d\tunrecognized\t%s\n", line, u.Type)
				continue
			}
			fields, err := json.Marshal(msg)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%d\t%s\t%s\n", line, msg.MessageType(), fields)
		}
		if err := scanner.Err(); err != nil {
			return err
		}
		if decodeStrict && failed > 0 {
			return fmt.Errorf("%d malformed frame(s)", failed)
		}
		return nil
	},
}

func init() {
	decodeCmd.Flags().BoolVar(&decodeStrict, "strict", false, "exit non-zero if any frame is malformed")
	rootCmd.AddCommand(decodeCmd)
}
