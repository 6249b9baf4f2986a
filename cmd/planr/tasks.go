package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/planr/internal/config"
	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage the planr user",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user and make it the default",
	RunE:  runUserAdd,
}

var userShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured user",
	RunE:  runUserShow,
}

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a task",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskUpdate,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

func init() {
	userAddCmd.Flags().String("email", "", "Email address (required)")
	userAddCmd.Flags().String("name", "", "Display name (required)")
	userAddCmd.Flags().String("voice", "", "Preferred voice for spoken replies")
	userAddCmd.MarkFlagRequired("email")
	userAddCmd.MarkFlagRequired("name")
	userCmd.AddCommand(userAddCmd, userShowCmd)

	taskAddCmd.Flags().String("description", "", "Longer description")
	taskAddCmd.Flags().StringP("priority", "p", string(models.PriorityMedium), "low, medium, high or urgent")
	taskAddCmd.Flags().String("due", "", "Due date (YYYY-MM-DD or e.g. \"next friday\")")
	taskAddCmd.Flags().IntP("estimate", "e", 0, "Estimated duration in minutes")
	taskAddCmd.Flags().StringSlice("tags", nil, "Comma-separated tags")

	taskListCmd.Flags().String("status", "", "Only tasks with this status")
	taskListCmd.Flags().String("priority", "", "Only tasks with this priority")

	taskUpdateCmd.Flags().String("title", "", "New title")
	taskUpdateCmd.Flags().String("description", "", "New description")
	taskUpdateCmd.Flags().String("priority", "", "New priority")
	taskUpdateCmd.Flags().String("status", "", "pending, in_progress, completed or cancelled")
	taskUpdateCmd.Flags().String("due", "", "New due date")
	taskUpdateCmd.Flags().Int("estimate", 0, "New estimate in minutes")
	taskUpdateCmd.Flags().Int("actual", 0, "Actual minutes spent")
	taskUpdateCmd.Flags().StringSlice("tags", nil, "Replace tags")
	taskUpdateCmd.Flags().Bool("clear-description", false, "Remove the description")
	taskUpdateCmd.Flags().Bool("clear-due", false, "Remove the due date")
	taskUpdateCmd.Flags().Bool("clear-estimate", false, "Remove the estimate")

	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskUpdateCmd, taskDeleteCmd)

	rootCmd.AddCommand(userCmd, taskCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	email, _ := cmd.Flags().GetString("email")
	name, _ := cmd.Flags().GetString("name")
	var voice *string
	if v, _ := cmd.Flags().GetString("voice"); v != "" {
		voice = &v
	}

	u, err := e.svc.CreateUser(email, name, voice)
	if err != nil {
		return fmt.Errorf("creating user: %w", err)
	}
	if err := config.SaveUserID(u.ID); err != nil {
		return fmt.Errorf("saving default user: %w", err)
	}

	fmt.Printf("Created user %d (%s <%s>)\n", u.ID, u.Name, u.Email)
	return nil
}

func runUserShow(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	id, err := e.userID()
	if err != nil {
		return err
	}
	u, err := e.svc.GetUser(id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:     %d\nName:   %s\nEmail:  %s\n", u.ID, u.Name, u.Email)
	if u.VoicePreference != nil {
		fmt.Printf("Voice:  %s\n", *u.VoicePreference)
	}
	fmt.Printf("Since:  %s\n", u.CreatedAt.Local().Format("2006-01-02"))
	return nil
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	priority, err := models.ParsePriority(mustString(cmd, "priority"))
	if err != nil {
		return err
	}

	t := store.Task{
		UserID:   userID,
		Title:    strings.Join(args, " "),
		Priority: priority,
	}
	if d := mustString(cmd, "description"); d != "" {
		t.Description = &d
	}
	if s := mustString(cmd, "due"); s != "" {
		due, err := parseDate(s, time.Now())
		if err != nil {
			return err
		}
		t.DueDate = &due
	}
	if cmd.Flags().Changed("estimate") {
		n, _ := cmd.Flags().GetInt("estimate")
		t.EstimatedDuration = &n
	}
	t.Tags, _ = cmd.Flags().GetStringSlice("tags")

	created, err := e.svc.CreateTask(t)
	if err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	fmt.Printf("Added task %d: %s [%s]\n", created.ID, created.Title, created.Priority)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	var f store.TaskFilter
	if s := mustString(cmd, "status"); s != "" {
		if f.Status, err = models.ParseStatus(s); err != nil {
			return err
		}
	}
	if p := mustString(cmd, "priority"); p != "" {
		if f.Priority, err = models.ParsePriority(p); err != nil {
			return err
		}
	}

	tasks, err := e.svc.GetUserTasks(userID, f)
	if err != nil {
		return fmt.Errorf("listing tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks found.")
		return nil
	}

	for _, t := range tasks {
		printTask(t)
	}
	return nil
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	var u store.TaskUpdate
	flags := cmd.Flags()
	if flags.Changed("title") {
		v := mustString(cmd, "title")
		u.Title = &v
	}
	if flags.Changed("description") {
		v := mustString(cmd, "description")
		u.Description = &v
	}
	if flags.Changed("priority") {
		p, err := models.ParsePriority(mustString(cmd, "priority"))
		if err != nil {
			return err
		}
		u.Priority = &p
	}
	if flags.Changed("status") {
		s, err := models.ParseStatus(mustString(cmd, "status"))
		if err != nil {
			return err
		}
		u.Status = &s
	}
	if flags.Changed("due") {
		due, err := parseDate(mustString(cmd, "due"), time.Now())
		if err != nil {
			return err
		}
		u.DueDate = &due
	}
	if flags.Changed("estimate") {
		n, _ := flags.GetInt("estimate")
		u.EstimatedDuration = &n
	}
	if flags.Changed("actual") {
		n, _ := flags.GetInt("actual")
		u.ActualDuration = &n
	}
	if flags.Changed("tags") {
		u.Tags, _ = flags.GetStringSlice("tags")
	}
	u.ClearDescription, _ = flags.GetBool("clear-description")
	u.ClearDueDate, _ = flags.GetBool("clear-due")
	u.ClearEstimatedDuration, _ = flags.GetBool("clear-estimate")

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := e.svc.UpdateTask(id, u)
	if err != nil {
		return fmt.Errorf("updating task %d: %w", id, err)
	}
	printTask(*t)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := e.svc.DeleteTask(id)
	if err != nil {
		return fmt.Errorf("deleting task %d: %w", id, err)
	}
	fmt.Printf("Deleted task %d: %s\n", t.ID, t.Title)
	return nil
}

func printTask(t store.Task) {
	est := "-"
	if t.EstimatedDuration != nil {
		est = fmt.Sprintf("%dmin", *t.EstimatedDuration)
	}
	due := ""
	if t.DueDate != nil {
		due = "  due " + t.DueDate.Local().Format("2006-01-02")
	}
	fmt.Printf("  %4d  %-7s  %-11s  %6s  %s%s\n", t.ID, t.Priority, t.Status, est, t.Title, due)
	if len(t.Tags) > 0 {
		fmt.Printf("        tags: %s\n", strings.Join(t.Tags, ", "))
	}
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
