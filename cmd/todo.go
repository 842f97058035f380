package cmd

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/tidytodo/internal/model"
	"github.com/manav03panchal/tidytodo/internal/validate"
)

// Todo command flags.
var (
	todoFlagDone bool
)

// todoCmd represents the todo command.
var todoCmd = &cobra.Command{
	Use:     "todo",
	Aliases: []string{"todos", "t"},
	Short:   "List and change your todos",
	Long: `List and change the todos of the logged-in user. Without a subcommand
the list is shown.

Todos of the demo account live on the remote service, with todos you add kept
on this machine. Todos of local accounts are always kept on this machine.

Examples:
  tidytodo todo
  tidytodo todo add call the bank
  tidytodo todo done 1712345678901
  tidytodo todo edit 3 watch a documentary
  tidytodo todo rm 1712345678901`,
	Annotations: sessionAnnotations(),
	RunE:        runTodoList,
}

var todoListCmd = &cobra.Command{
	Use:         "list",
	Aliases:     []string{"ls"},
	Short:       "List todos",
	Args:        cobra.NoArgs,
	Annotations: sessionAnnotations(),
	RunE:        runTodoList,
}

var todoAddCmd = &cobra.Command{
	Use:         "add TEXT...",
	Aliases:     []string{"new", "a"},
	Short:       "Add a todo",
	Args:        cobra.MinimumNArgs(1),
	Annotations: sessionAnnotations(),
	RunE:        runTodoAdd,
}

var todoEditCmd = &cobra.Command{
	Use:               "edit ID TEXT...",
	Short:             "Change the text of a todo",
	Args:              cobra.MinimumNArgs(2),
	Annotations:       sessionAnnotations(),
	ValidArgsFunction: completeTodoIDArg,
	RunE:              runTodoEdit,
}

var todoDoneCmd = &cobra.Command{
	Use:               "done ID...",
	Aliases:           []string{"complete", "check"},
	Short:             "Mark todos as completed",
	Args:              cobra.MinimumNArgs(1),
	Annotations:       sessionAnnotations(),
	ValidArgsFunction: completeTodoIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTodoSetCompleted(cmd, args, true)
	},
}

var todoUndoneCmd = &cobra.Command{
	Use:               "undone ID...",
	Aliases:           []string{"reopen", "uncheck"},
	Short:             "Mark todos as not completed",
	Args:              cobra.MinimumNArgs(1),
	Annotations:       sessionAnnotations(),
	ValidArgsFunction: completeTodoIDs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTodoSetCompleted(cmd, args, false)
	},
}

var todoRemoveCmd = &cobra.Command{
	Use:               "rm ID...",
	Aliases:           []string{"remove", "delete", "del"},
	Short:             "Delete todos",
	Args:              cobra.MinimumNArgs(1),
	Annotations:       sessionAnnotations(),
	ValidArgsFunction: completeTodoIDs,
	RunE:              runTodoRemove,
}

func init() {
	todoAddCmd.Flags().BoolVarP(&todoFlagDone, "done", "d", false, "Create the todo already completed")

	todoCmd.AddCommand(todoListCmd)
	todoCmd.AddCommand(todoAddCmd)
	todoCmd.AddCommand(todoEditCmd)
	todoCmd.AddCommand(todoDoneCmd)
	todoCmd.AddCommand(todoUndoneCmd)
	todoCmd.AddCommand(todoRemoveCmd)
	rootCmd.AddCommand(todoCmd)
}

func sessionAnnotations() map[string]string {
	return map[string]string{annotationSession: "true"}
}

func runTodoList(cmd *cobra.Command, args []string) error {
	user, err := ctx.RequireSession()
	if err != nil {
		return err
	}

	todos, err := ctx.Todos.List(ctx.RequestContext(cmd.Context()), user.ID)
	if err != nil {
		if ctx.IsJSON() {
			return err
		}
		ctx.CLIFormatter().PrintListError(err)
		return reported(err)
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTodos(todos, ctx.Origin)
	}
	ctx.CLIFormatter().PrintTodos(todos, ctx.Origin)
	return nil
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	user, err := ctx.RequireSession()
	if err != nil {
		return err
	}

	todo, err := ctx.Todos.Create(ctx.RequestContext(cmd.Context()), user.ID, strings.Join(args, " "), todoFlagDone)
	if err != nil {
		return err
	}
	return printTodo("created", "Added", todo)
}

func runTodoEdit(cmd *cobra.Command, args []string) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	id, err := validate.TodoID(args[0])
	if err != nil {
		return err
	}

	text := validate.SanitizeTodoText(strings.Join(args[1:], " "))
	if err := validate.TodoText(text); err != nil {
		return err
	}

	todo, err := ctx.Todos.Update(ctx.RequestContext(cmd.Context()), id, model.TodoPatch{}.SetText(text))
	if err != nil {
		return err
	}
	return printTodo("updated", "Updated", todo)
}

func runTodoSetCompleted(cmd *cobra.Command, args []string, completed bool) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	ids, err := parseTodoIDs(args)
	if err != nil {
		return err
	}

	verb := "Reopened"
	if completed {
		verb = "Completed"
	}
	patch := model.TodoPatch{}.SetCompleted(completed)
	for _, id := range ids {
		todo, err := ctx.Todos.Update(ctx.RequestContext(cmd.Context()), id, patch)
		if err != nil {
			return err
		}
		if err := printTodo("updated", verb, todo); err != nil {
			return err
		}
	}
	return nil
}

func runTodoRemove(cmd *cobra.Command, args []string) error {
	if _, err := ctx.RequireSession(); err != nil {
		return err
	}
	ids, err := parseTodoIDs(args)
	if err != nil {
		return err
	}

	for _, id := range ids {
		if err := ctx.Todos.Delete(ctx.RequestContext(cmd.Context()), id); err != nil {
			return err
		}
		if ctx.IsJSON() {
			if err := ctx.JSONFormatter().PrintDeleted(id); err != nil {
				return err
			}
			continue
		}
		ctx.CLIFormatter().Success("Deleted todo " + strconv.FormatInt(id, 10))
	}
	return nil
}

func parseTodoIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := validate.TodoID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func printTodo(status, verb string, todo *model.Todo) error {
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintTodo(status, todo, ctx.Origin(todo.ID))
	}
	ctx.CLIFormatter().PrintTodo(verb, todo)
	return nil
}
