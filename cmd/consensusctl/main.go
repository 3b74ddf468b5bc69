// Command consensusctl is a cobra CLI for operating the consensus engine
// over its HTTP admin surface, grounded on the teacher's cmd/cli cobra
// command-group shape.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var apiBase string

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:   "consensusctl",
		Short: "Operate the swarm consensus engine",
	}
	root.PersistentFlags().StringVar(&apiBase, "api", "http://localhost:8080", "base URL of the httpapi server")

	root.AddCommand(triggerCmd(), statusCmd(), getCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func triggerCmd() *cobra.Command {
	var priority int
	var force string
	cmd := &cobra.Command{
		Use:   "trigger <questionId>",
		Short: "Trigger a consensus run for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, _ := json.Marshal(map[string]any{"priority": priority, "forceAlgorithm": force})
			return postAndPrint(fmt.Sprintf("%s/consensus/%s", apiBase, args[0]), body)
		},
	}
	cmd.Flags().IntVar(&priority, "priority", 0, "job priority")
	cmd.Flags().StringVar(&force, "force-algorithm", "", "BFT | DPOR | HYBRID")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <questionId>",
		Short: "Get the job/consensus status for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(fmt.Sprintf("%s/consensus/%s/status", apiBase, args[0]))
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <questionId>",
		Short: "Get the latest consensus result for a question",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return getAndPrint(fmt.Sprintf("%s/consensus/%s", apiBase, args[0]))
		},
	}
}

func postAndPrint(url string, body []byte) error {
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp.Body)
}

func getAndPrint(url string) error {
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return printBody(resp.Body)
}

func printBody(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
