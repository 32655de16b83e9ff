package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// showCmd prints pairs from a stored assignment
var showCmd = &cobra.Command{
	Use:   "show [receiver ...]",
	Short: "Print pairs from a stored year",
	Long: `Prints who gives to whom for the stored year. With receiver names as
arguments, only the pairs for those receivers are printed, which is handy
when one person needs a reminder without spoiling the rest.`,
	RunE: runShow,
}

// yearsCmd lists stored years
var yearsCmd = &cobra.Command{
	Use:   "years",
	Short: "List years with a stored assignment",
	RunE:  runYears,
}

func runShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	assignment, err := st.Load(year)
	if err != nil {
		return err
	}

	for _, pair := range assignment {
		if !receiverMatches(pair.Receiver, args) {
			continue
		}
		fmt.Printf("%s is secret santa for %s\n", pair.Giver, pair.Receiver)
	}
	return nil
}

// receiverMatches reports whether receiver should be printed. Filters
// match on substring so a first name finds the full entry; no filters
// means print everything.
func receiverMatches(receiver string, filters []string) bool {
	if len(filters) == 0 {
		return true
	}
	for _, name := range filters {
		if strings.Contains(receiver, name) {
			return true
		}
	}
	return false
}

func runYears(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	years, err := st.Years()
	if err != nil {
		return err
	}
	if len(years) == 0 {
		fmt.Println("No assignments stored yet")
		return nil
	}
	for _, y := range years {
		fmt.Println(y)
	}
	return nil
}
