package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"libracatalog/internal/catalog"
	"libracatalog/internal/circulation"
	"libracatalog/internal/membership"
)

const menu = `
Library Management System
1. Add Book
2. Add Magazine
3. Add DVD
4. Add User
5. Display Items
6. Display Users
7. Issue Item
8. Return Item
9. Search Item
10. Remove Item
11. Item History
0. Exit
Enter your choice: `

// errEOF ends the session when input runs out mid-prompt.
var errEOF = errors.New("end of input")

// Console is the interactive menu front end over a catalog manager.
type Console struct {
	svc circulation.Service
	in  *bufio.Scanner
	out io.Writer
}

func New(svc circulation.Service, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, in: bufio.NewScanner(in), out: out}
}

// Run loops over the menu until the user picks Exit or input ends.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := c.prompt(menu)
		if errors.Is(err, errEOF) {
			c.println()
			return nil
		}
		if err != nil {
			return err
		}

		choice, convErr := strconv.Atoi(line)
		if convErr != nil {
			c.println("Invalid choice. Please try again.")
			continue
		}
		if choice == 0 {
			c.println("Exiting program...")
			return nil
		}

		err = c.dispatch(ctx, choice)
		if errors.Is(err, errEOF) {
			c.println()
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) dispatch(ctx context.Context, choice int) error {
	switch choice {
	case 1:
		return c.addBook(ctx)
	case 2:
		return c.addMagazine(ctx)
	case 3:
		return c.addDVD(ctx)
	case 4:
		return c.addUser(ctx)
	case 5:
		c.println("Library Items:")
		for _, line := range c.svc.DisplayItems(ctx) {
			c.println(line)
		}
	case 6:
		c.println("Library Users:")
		for _, line := range c.svc.DisplayUsers(ctx) {
			c.println(line)
		}
	case 7:
		return c.loan(ctx, c.svc.IssueItem)
	case 8:
		return c.loan(ctx, c.svc.ReturnItem)
	case 9:
		return c.search(ctx)
	case 10:
		return c.remove(ctx)
	case 11:
		return c.history(ctx)
	default:
		c.println("Invalid choice. Please try again.")
	}
	return nil
}

func (c *Console) addBook(ctx context.Context) error {
	title, author, err := c.titleAndAuthor()
	if err != nil {
		return err
	}
	isbn, err := c.prompt("Enter ISBN: ")
	if err != nil {
		return err
	}
	genre, err := c.genre()
	if err != nil {
		return err
	}
	return c.add(ctx, catalog.NewBook(title, author, isbn, genre))
}

func (c *Console) addMagazine(ctx context.Context) error {
	title, author, err := c.titleAndAuthor()
	if err != nil {
		return err
	}
	issue, err := c.prompt("Enter issue number: ")
	if err != nil {
		return err
	}
	return c.add(ctx, catalog.NewMagazine(title, author, issue))
}

func (c *Console) addDVD(ctx context.Context) error {
	title, author, err := c.titleAndAuthor()
	if err != nil {
		return err
	}
	duration, err := c.prompt("Enter duration (in minutes): ")
	if err != nil {
		return err
	}
	return c.add(ctx, catalog.NewDVD(title, author, duration))
}

func (c *Console) add(ctx context.Context, item catalog.Item) error {
	if _, err := c.svc.AddItem(ctx, item); err != nil {
		c.println("Could not add item:", err)
		return nil
	}
	c.println(item.Type(), "added successfully!")
	return nil
}

func (c *Console) addUser(ctx context.Context) error {
	name, err := c.prompt("Enter user name: ")
	if err != nil {
		return err
	}
	id, err := c.prompt("Enter user ID: ")
	if err != nil {
		return err
	}
	if _, err := c.svc.AddUser(ctx, membership.NewUser(name, id)); err != nil {
		c.println("Could not add user:", err)
		return nil
	}
	c.println("User added successfully!")
	return nil
}

func (c *Console) loan(ctx context.Context, op func(context.Context, string, string) circulation.Outcome) error {
	title, err := c.prompt("Enter item title: ")
	if err != nil {
		return err
	}
	userID, err := c.prompt("Enter user ID: ")
	if err != nil {
		return err
	}
	c.println(op(ctx, title, userID))
	return nil
}

func (c *Console) search(ctx context.Context) error {
	title, err := c.prompt("Enter item title to search: ")
	if err != nil {
		return err
	}
	items, result := c.svc.SearchItem(ctx, title)
	if !result.OK() {
		c.println(result)
		return nil
	}
	for _, item := range items {
		c.println(item.Display())
	}
	return nil
}

func (c *Console) remove(ctx context.Context) error {
	title, err := c.prompt("Enter item title to remove: ")
	if err != nil {
		return err
	}
	c.println(c.svc.RemoveItem(ctx, title))
	return nil
}

func (c *Console) history(ctx context.Context) error {
	title, err := c.prompt("Enter item title: ")
	if err != nil {
		return err
	}
	items, result := c.svc.SearchItem(ctx, title)
	if !result.OK() {
		c.println(result)
		return nil
	}

	for _, item := range items {
		events, err := c.svc.History(ctx, item.ID)
		if err != nil {
			c.println("Could not load history:", err)
			return nil
		}
		for _, event := range events {
			c.printf("v%d %s %s\n", event.Version, event.CreatedAt.Format("2006-01-02 15:04:05"), event.EventType)
		}
	}
	return nil
}

func (c *Console) titleAndAuthor() (string, string, error) {
	title, err := c.prompt("Enter title: ")
	if err != nil {
		return "", "", err
	}
	author, err := c.prompt("Enter author: ")
	if err != nil {
		return "", "", err
	}
	return title, author, nil
}

// genre re-prompts until the selection is a valid genre number.
func (c *Console) genre() (catalog.Genre, error) {
	for {
		c.println("Select Genre:")
		for _, g := range catalog.Genres() {
			c.printf("%d. %s\n", int(g), g)
		}
		line, err := c.prompt("Enter genre: ")
		if err != nil {
			return 0, err
		}

		n, convErr := strconv.Atoi(line)
		if convErr != nil {
			c.println("Invalid genre selection, enter a number.")
			continue
		}
		g, parseErr := catalog.ParseGenre(n)
		if parseErr != nil {
			c.println("Invalid genre selection:", parseErr)
			continue
		}
		return g, nil
	}
}

func (c *Console) prompt(text string) (string, error) {
	fmt.Fprint(c.out, text)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
		return "", errEOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

func (c *Console) println(args ...interface{}) {
	fmt.Fprintln(c.out, args...)
}

func (c *Console) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out, format, args...)
}
