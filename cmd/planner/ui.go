package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/MarcoPoloResearchLab/planner/internal/host"
	"github.com/MarcoPoloResearchLab/planner/internal/planner"
	"github.com/MarcoPoloResearchLab/planner/internal/session"
)

// commandLoop renders the screen the session selects and feeds line
// commands back into it, standing in for the mini-app webview.
type commandLoop struct {
	session  *session.Session
	terminal *host.Terminal
	output   io.Writer
}

func (l *commandLoop) run(ctx context.Context) error {
	user := l.session.User()
	if user.FirstName != "" {
		fmt.Fprintf(l.output, "Hello, %s!\n", user.FirstName)
	}

	for {
		l.render()
		fmt.Fprint(l.output, "> ")
		line, err := l.terminal.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}
		l.dispatch(ctx, line)
	}
}

func (l *commandLoop) dispatch(ctx context.Context, line string) {
	command, argument := splitCommand(line)

	// Navigation works from every screen, same as the nav bar.
	switch command {
	case "events":
		l.session.ShowEvents()
		return
	case "groups":
		l.session.ShowGroups()
		return
	}

	var err error
	switch l.session.Screen() {
	case session.ScreenEventList:
		err = l.dispatchEventList(ctx, command, argument)
	case session.ScreenGroupList:
		err = l.dispatchGroupList(ctx, command, argument)
	case session.ScreenCreateEvent:
		err = l.dispatchEventForm(ctx, command, argument, l.session.NewEventDraft(), l.session.SubmitNewEvent, l.session.ShowEvents)
	case session.ScreenEditEvent:
		err = l.dispatchEventForm(ctx, command, argument, l.session.EditingEvent(), l.session.SubmitEventEdit, l.session.CancelEventEdit)
	case session.ScreenCreateGroup:
		err = l.dispatchCreateGroup(ctx, command, argument)
	case session.ScreenEditGroup:
		err = l.dispatchEditGroup(ctx, command, argument)
	}
	if err != nil {
		fmt.Fprintf(l.output, "error: %v\n", err)
	}
}

func (l *commandLoop) dispatchEventList(ctx context.Context, command, argument string) error {
	switch command {
	case "new":
		l.session.ComposeEvent()
	case "edit":
		eventID, err := strconv.ParseInt(argument, 10, 64)
		if err != nil {
			return fmt.Errorf("usage: edit <event id>")
		}
		return l.session.EditEvent(eventID)
	case "delete":
		eventID, err := strconv.ParseInt(argument, 10, 64)
		if err != nil {
			return fmt.Errorf("usage: delete <event id>")
		}
		return l.session.DeleteEvent(ctx, eventID)
	case "refresh":
		return l.session.RefreshEvents(ctx)
	default:
		l.printHelp("new | edit <id> | delete <id> | refresh | events | groups | quit")
	}
	return nil
}

func (l *commandLoop) dispatchGroupList(ctx context.Context, command, argument string) error {
	switch command {
	case "new":
		l.session.ComposeGroup()
	case "edit":
		if argument == "" {
			return fmt.Errorf("usage: edit <group id>")
		}
		return l.session.EditGroup(argument)
	case "delete":
		if argument == "" {
			return fmt.Errorf("usage: delete <group id>")
		}
		return l.session.DeleteGroup(ctx, argument)
	case "refresh":
		return l.session.RefreshGroups(ctx)
	default:
		l.printHelp("new | edit <id> | delete <id> | refresh | events | groups | quit")
	}
	return nil
}

func (l *commandLoop) dispatchEventForm(ctx context.Context, command, argument string, draft *planner.Event, submit func(context.Context) error, cancel func()) error {
	if draft == nil {
		return nil
	}
	switch command {
	case "title":
		draft.Title = argument
	case "desc":
		draft.Description = argument
	case "time":
		draft.EventTime = argument
	case "remind":
		draft.ReminderTime = argument
	case "group":
		draft.GroupID = argument
	case "submit":
		return submit(ctx)
	case "cancel":
		cancel()
	default:
		l.printHelp("title <text> | desc <text> | time <yyyy-mm-ddThh:mm> | remind <yyyy-mm-ddThh:mm> | group <id> | submit | cancel")
	}
	return nil
}

func (l *commandLoop) dispatchCreateGroup(ctx context.Context, command, argument string) error {
	switch command {
	case "name":
		l.session.NewGroupDraft().Name = argument
	case "members":
		l.session.SetNewGroupMembers(argument)
	case "submit":
		return l.session.SubmitNewGroup(ctx)
	case "cancel":
		l.session.ShowGroups()
	default:
		l.printHelp("name <text> | members <id, id, ...> | submit | cancel")
	}
	return nil
}

func (l *commandLoop) dispatchEditGroup(ctx context.Context, command, argument string) error {
	draft := l.session.EditingGroup()
	if draft == nil {
		return nil
	}
	switch command {
	case "name":
		draft.Name = argument
	case "add":
		l.session.PromptAddMember(draft.ID)
	case "remove":
		memberID, err := strconv.ParseInt(argument, 10, 64)
		if err != nil {
			return fmt.Errorf("usage: remove <member id>")
		}
		l.session.RemoveMember(draft.ID, memberID)
	case "submit":
		return l.session.SubmitGroupEdit(ctx)
	case "cancel":
		l.session.CancelGroupEdit()
	default:
		l.printHelp("name <text> | add | remove <id> | submit | cancel")
	}
	return nil
}

func (l *commandLoop) render() {
	switch l.session.Screen() {
	case session.ScreenEventList:
		l.renderEventList()
	case session.ScreenGroupList:
		l.renderGroupList()
	case session.ScreenCreateEvent:
		fmt.Fprintln(l.output, "-- New event --")
		l.renderEventDraft(l.session.NewEventDraft())
	case session.ScreenEditEvent:
		fmt.Fprintln(l.output, "-- Edit event --")
		l.renderEventDraft(l.session.EditingEvent())
	case session.ScreenCreateGroup:
		fmt.Fprintln(l.output, "-- New group --")
		l.renderGroupDraft(l.session.NewGroupDraft())
	case session.ScreenEditGroup:
		fmt.Fprintln(l.output, "-- Edit group --")
		l.renderGroupDraft(l.session.EditingGroup())
	}
}

func (l *commandLoop) renderEventList() {
	fmt.Fprintln(l.output, "-- My events --")
	events := l.session.Events()
	if len(events) == 0 {
		fmt.Fprintln(l.output, "No events")
		return
	}
	for _, event := range events {
		line := fmt.Sprintf("[%d] %s at %s (remind %s)", event.ID, event.Title, event.EventTime, event.ReminderTime)
		if event.GroupID != "" {
			line += " group=" + event.GroupID
		}
		fmt.Fprintln(l.output, line)
		if event.Description != "" {
			fmt.Fprintf(l.output, "    %s\n", event.Description)
		}
	}
}

func (l *commandLoop) renderGroupList() {
	fmt.Fprintln(l.output, "-- My groups --")
	groups := l.session.Groups()
	if len(groups) == 0 {
		fmt.Fprintln(l.output, "No groups")
		return
	}
	for _, group := range groups {
		fmt.Fprintf(l.output, "[%s] %s members=%s\n", group.ID, group.Name, formatMembers(group.Members))
	}
}

func (l *commandLoop) renderEventDraft(draft *planner.Event) {
	if draft == nil {
		return
	}
	fmt.Fprintf(l.output, "title:  %s\n", draft.Title)
	fmt.Fprintf(l.output, "desc:   %s\n", draft.Description)
	fmt.Fprintf(l.output, "time:   %s\n", draft.EventTime)
	fmt.Fprintf(l.output, "remind: %s\n", draft.ReminderTime)
	fmt.Fprintf(l.output, "group:  %s\n", draft.GroupID)
}

func (l *commandLoop) renderGroupDraft(draft *planner.Group) {
	if draft == nil {
		return
	}
	fmt.Fprintf(l.output, "name:    %s\n", draft.Name)
	fmt.Fprintf(l.output, "members: %s\n", formatMembers(draft.Members))
}

func (l *commandLoop) printHelp(usage string) {
	fmt.Fprintf(l.output, "commands: %s\n", usage)
}

func formatMembers(members []int64) string {
	if len(members) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(members))
	for _, memberID := range members {
		parts = append(parts, strconv.FormatInt(memberID, 10))
	}
	return strings.Join(parts, ", ")
}

func splitCommand(line string) (string, string) {
	fields := strings.SplitN(line, " ", 2)
	command := strings.ToLower(strings.TrimSpace(fields[0]))
	argument := ""
	if len(fields) == 2 {
		argument = strings.TrimSpace(fields[1])
	}
	return command, argument
}
