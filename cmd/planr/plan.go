package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/planr/internal/calendar"
	"github.com/christopherklint97/planr/internal/models"
	"github.com/christopherklint97/planr/internal/planner"
	"github.com/christopherklint97/planr/internal/scheduler"
	"github.com/christopherklint97/planr/internal/service"
	"github.com/christopherklint97/planr/internal/store"
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Pack pending tasks into time blocks for a day",
	RunE:  runPlan,
}

var blocksCmd = &cobra.Command{
	Use:   "blocks",
	Short: "Show time blocks for a day",
	RunE:  runBlocks,
}

var blockCmd = &cobra.Command{
	Use:   "block",
	Short: "Manage time blocks",
}

var blockAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a time block by hand",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBlockAdd,
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Manage reminders",
}

var remindAddCmd = &cobra.Command{
	Use:   "add <message>",
	Short: "Add a reminder",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRemindAdd,
}

var remindListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reminders that are due and not yet sent",
	RunE:  runRemindList,
}

var remindStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the reminder loop",
	RunE:  runRemindStart,
}

var remindStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running reminder loop",
	RunE:  runRemindStop,
}

func init() {
	planCmd.Flags().StringP("date", "d", "", "Day to plan (default today)")
	planCmd.Flags().String("start", "", "Start of working hours, HH:MM (default from config)")
	planCmd.Flags().String("end", "", "End of working hours, HH:MM (default from config)")
	planCmd.Flags().String("export", "", "Also write the plan to this .ics file")

	blocksCmd.Flags().StringP("date", "d", "", "Day to show (default today)")
	blocksCmd.Flags().String("ics", "", "Calendar file or URL to show alongside")

	blockAddCmd.Flags().StringP("date", "d", "", "Day of the block (default today)")
	blockAddCmd.Flags().String("start", "", "Start time, HH:MM (required)")
	blockAddCmd.Flags().String("end", "", "End time, HH:MM (required)")
	blockAddCmd.Flags().Int64("task", 0, "Task this block is for")
	blockAddCmd.MarkFlagRequired("start")
	blockAddCmd.MarkFlagRequired("end")
	blockCmd.AddCommand(blockAddCmd)

	remindAddCmd.Flags().String("at", "", "When to remind (e.g. \"2024-01-15 14:00\" or \"in 2 hours\")")
	remindAddCmd.Flags().String("type", string(models.ReminderCustom), "task_due, time_block or custom")
	remindAddCmd.Flags().Int64("task", 0, "Related task")
	remindAddCmd.Flags().Int64("block", 0, "Related time block")
	remindAddCmd.MarkFlagRequired("at")
	remindCmd.AddCommand(remindAddCmd, remindListCmd, remindStartCmd, remindStopCmd)

	rootCmd.AddCommand(planCmd, blocksCmd, blockCmd, remindCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	date, err := parseDate(mustString(cmd, "date"), time.Now())
	if err != nil {
		return err
	}
	start := mustString(cmd, "start")
	if start == "" {
		start = e.cfg.Schedule.WorkStart
	}
	end := mustString(cmd, "end")
	if end == "" {
		end = e.cfg.Schedule.WorkEnd
	}

	last, err := e.svc.LastPlannedDate(userID)
	if err != nil {
		return err
	}
	if last == date.Format(time.DateOnly) {
		fmt.Printf("Note: %s was already planned; new blocks are added next to the earlier ones.\n\n", last)
	}

	blocks, err := e.svc.GenerateTimeBlocks(service.GenerateInput{
		UserID:    userID,
		Date:      date,
		WorkStart: start,
		WorkEnd:   end,
	})
	if err != nil {
		return fmt.Errorf("generating plan: %w", err)
	}

	if len(blocks) == 0 {
		fmt.Println("Nothing to plan: no pending task with an estimate fits the first free slot.")
		return nil
	}

	fmt.Printf("Plan for %s:\n\n", date.Format("Mon 2006-01-02"))
	printBlocks(blocks)

	if path := mustString(cmd, "export"); path != "" {
		if err := calendar.ExportFile(path, blocks, time.Now()); err != nil {
			return err
		}
		fmt.Printf("\nWrote %s\n", path)
	}
	return nil
}

func runBlocks(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	date, err := parseDate(mustString(cmd, "date"), time.Now())
	if err != nil {
		return err
	}

	blocks, err := e.svc.TimeBlocks(userID, &date)
	if err != nil {
		return fmt.Errorf("loading time blocks: %w", err)
	}
	if len(blocks) == 0 {
		fmt.Printf("No time blocks on %s.\n", date.Format("2006-01-02"))
	} else {
		printBlocks(blocks)
	}

	src := mustString(cmd, "ics")
	if src == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	events, err := calendar.Fetch(ctx, src, date, date.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	fmt.Printf("\nCalendar (%d events):\n", len(events))
	for _, ev := range events {
		fmt.Printf("  %s–%s  %s\n",
			ev.StartTime.Local().Format("15:04"),
			ev.EndTime.Local().Format("15:04"),
			ev.Summary,
		)
	}
	return nil
}

func runBlockAdd(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	date, err := parseDate(mustString(cmd, "date"), time.Now())
	if err != nil {
		return err
	}
	w, err := planner.NewWindow(date, mustString(cmd, "start"), mustString(cmd, "end"))
	if err != nil {
		return err
	}

	b := store.TimeBlock{
		UserID:    userID,
		Title:     strings.Join(args, " "),
		StartTime: w.Start,
		EndTime:   w.End,
	}
	if id, _ := cmd.Flags().GetInt64("task"); id > 0 {
		b.TaskID = &id
	}

	created, err := e.svc.CreateTimeBlock(b)
	if err != nil {
		return fmt.Errorf("creating time block: %w", err)
	}
	printBlocks([]store.TimeBlock{*created})
	return nil
}

func runRemindAdd(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	at, err := parseMoment(mustString(cmd, "at"), time.Now())
	if err != nil {
		return err
	}
	typ, err := models.ParseReminderType(mustString(cmd, "type"))
	if err != nil {
		return err
	}

	r := store.Reminder{
		UserID:       userID,
		Message:      strings.Join(args, " "),
		ReminderTime: at,
		ReminderType: typ,
	}
	if id, _ := cmd.Flags().GetInt64("task"); id > 0 {
		r.TaskID = &id
	}
	if id, _ := cmd.Flags().GetInt64("block"); id > 0 {
		r.TimeBlockID = &id
	}

	created, err := e.svc.CreateReminder(r)
	if err != nil {
		return fmt.Errorf("creating reminder: %w", err)
	}
	fmt.Printf("Reminder %d set for %s\n", created.ID, created.ReminderTime.Local().Format("Mon 2006-01-02 15:04"))
	return nil
}

func runRemindList(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	userID, err := e.userID()
	if err != nil {
		return err
	}

	due, err := e.svc.PendingReminders(&userID)
	if err != nil {
		return fmt.Errorf("loading reminders: %w", err)
	}
	if len(due) == 0 {
		fmt.Println("No reminders due.")
		return nil
	}

	for _, r := range due {
		fmt.Printf("  %4d  %s  %-10s  %s\n",
			r.ID, r.ReminderTime.Local().Format("2006-01-02 15:04"), r.ReminderType, r.Message)
	}
	return nil
}

func runRemindStart(cmd *cobra.Command, args []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return scheduler.New(e.cfg, e.svc, e.logger).Run(ctx)
}

func runRemindStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to reminder loop (PID %d)\n", pid)
	return nil
}

func printBlocks(blocks []store.TimeBlock) {
	var total time.Duration
	for _, b := range blocks {
		marker := ""
		if b.IsAISuggested {
			marker = "  (suggested)"
		}
		fmt.Printf("  %s–%s  %s%s\n",
			b.StartTime.Local().Format("15:04"),
			b.EndTime.Local().Format("15:04"),
			b.Title,
			marker,
		)
		total += b.EndTime.Sub(b.StartTime)
	}
	fmt.Printf("\nTotal: %dh %dmin (%d blocks)\n", int(total.Hours()), int(total.Minutes())%60, len(blocks))
}
