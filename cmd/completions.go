package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

// completeTodoIDs completes the ids of the user's locally stored todos.
// Remote todos are not fetched during completion.
func completeTodoIDs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if ctx == nil || ctx.LocalTodos == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	user := ctx.Session.Current()
	if user == nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	todos, err := ctx.LocalTodos.List(user.ID)
	if err != nil {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}

	var completions []string
	for _, t := range todos {
		id := strconv.FormatInt(t.ID, 10)
		if strings.HasPrefix(id, toComplete) {
			completions = append(completions, id+"\t"+t.Text)
		}
	}
	return completions, cobra.ShellCompDirectiveNoFileComp
}

// completeTodoIDArg completes only the first argument with a todo id.
func completeTodoIDArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Only complete first argument
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return completeTodoIDs(cmd, args, toComplete)
}
