package circulation

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"libracatalog/internal/catalog"
	"libracatalog/internal/logger"
	"libracatalog/internal/membership"
	"libracatalog/pkg/eventstore"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	return NewService(eventstore.NewEventStore(), logger.NewNop())
}

// givenLibrary holds Dune, Wired and Alien plus users U1 and U2.
func givenLibrary(t *testing.T) Service {
	t.Helper()
	ctx := context.Background()
	svc := newTestService(t)

	for _, item := range []catalog.Item{
		catalog.NewBook("Dune", "Herbert", "ISBN1", catalog.ScienceFiction),
		catalog.NewMagazine("Wired", "Conde Nast", "42"),
		catalog.NewDVD("Alien", "Scott", "117"),
	} {
		_, err := svc.AddItem(ctx, item)
		require.NoError(t, err)
	}
	for _, user := range []membership.User{
		membership.NewUser("Alice", "U1"),
		membership.NewUser("Bob", "U2"),
	} {
		_, err := svc.AddUser(ctx, user)
		require.NoError(t, err)
	}
	return svc
}

func itemTitled(t *testing.T, svc Service, title string) catalog.Item {
	t.Helper()
	items, result := svc.SearchItem(context.Background(), title)
	require.Equal(t, StatusFound, result.Status)
	return items[0]
}

func borrowed(t *testing.T, svc Service, userID string) []string {
	t.Helper()
	user, ok := svc.GetUser(context.Background(), userID)
	require.True(t, ok)
	return user.Titles()
}

func TestIssueDuneToU1(t *testing.T) {
	svc := givenLibrary(t)

	result := svc.IssueItem(context.Background(), "Dune", "U1")

	assert.Equal(t, StatusIssued, result.Status)
	assert.True(t, result.OK())
	assert.NoError(t, result.Err())
	assert.Equal(t, "Book issued successfully to U1!", result.String())
	assert.Equal(t, []string{"Dune"}, borrowed(t, svc, "U1"))

	item := itemTitled(t, svc, "Dune")
	assert.True(t, item.IsIssued())
	assert.Equal(t, "U1", item.BorrowerID)
}

func TestIssueAlreadyIssuedToAnotherUser(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)

	result := svc.IssueItem(ctx, "Dune", "U2")

	assert.Equal(t, StatusAlreadyIssued, result.Status)
	assert.ErrorIs(t, result.Err(), ErrAlreadyIssued)
	assert.Equal(t, "Book is already issued!", result.String())
	assert.Empty(t, borrowed(t, svc, "U2"))
	assert.Equal(t, "U1", itemTitled(t, svc, "Dune").BorrowerID)
}

func TestIssueTwiceLeavesAvailabilityUnchanged(t *testing.T) {
	for _, title := range []string{"Dune", "Wired", "Alien"} {
		t.Run(title, func(t *testing.T) {
			svc := givenLibrary(t)
			ctx := context.Background()
			require.Equal(t, StatusIssued, svc.IssueItem(ctx, title, "U1").Status)

			result := svc.IssueItem(ctx, title, "U1")

			assert.Equal(t, StatusAlreadyIssued, result.Status)
			assert.True(t, itemTitled(t, svc, title).IsIssued())
			assert.Equal(t, []string{title}, borrowed(t, svc, "U1"))
		})
	}
}

func TestReturnDuneFromU1(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)

	result := svc.ReturnItem(ctx, "Dune", "U1")

	assert.Equal(t, StatusReturned, result.Status)
	assert.Equal(t, "Dune returned successfully!", result.String())
	assert.False(t, itemTitled(t, svc, "Dune").IsIssued())
	assert.Empty(t, borrowed(t, svc, "U1"))
}

func TestReturnTwiceReportsNotIssued(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Wired", "U1").Status)
	require.Equal(t, StatusReturned, svc.ReturnItem(ctx, "Wired", "U1").Status)

	result := svc.ReturnItem(ctx, "Wired", "U1")

	assert.Equal(t, StatusNotIssued, result.Status)
	assert.ErrorIs(t, result.Err(), ErrNotIssued)
	assert.Equal(t, "Magazine was not issued!", result.String())
}

func TestReturnByNonBorrowerIsRejected(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Alien", "U1").Status)

	result := svc.ReturnItem(ctx, "Alien", "U2")

	assert.Equal(t, StatusNotBorrower, result.Status)
	assert.ErrorIs(t, result.Err(), ErrNotBorrower)
	assert.Equal(t, "DVD is issued to another user!", result.String())
	assert.True(t, itemTitled(t, svc, "Alien").IsIssued())
	assert.Equal(t, []string{"Alien"}, borrowed(t, svc, "U1"))
}

func TestUnknownTitleAndUser(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()

	issue := svc.IssueItem(ctx, "Nonexistent", "U1")
	assert.Equal(t, StatusNotFound, issue.Status)
	assert.ErrorIs(t, issue.Err(), ErrItemNotFound)
	assert.Equal(t, "Item not found!", issue.String())

	ret := svc.ReturnItem(ctx, "Nonexistent", "U1")
	assert.Equal(t, StatusNotFound, ret.Status)

	noUser := svc.IssueItem(ctx, "Dune", "U9")
	assert.Equal(t, StatusUserNotFound, noUser.Status)
	assert.ErrorIs(t, noUser.Err(), ErrUserNotFound)
	assert.Equal(t, "User not found!", noUser.String())
	assert.False(t, itemTitled(t, svc, "Dune").IsIssued())

	assert.Equal(t, StatusUserNotFound, svc.ReturnItem(ctx, "Dune", "U9").Status)
}

func TestSearchNotFoundIsIdempotent(t *testing.T) {
	svc := givenLibrary(t)

	for i := 0; i < 3; i++ {
		items, result := svc.SearchItem(context.Background(), "Nonexistent")
		assert.Empty(t, items)
		assert.Equal(t, StatusNotFound, result.Status)
		assert.False(t, result.OK())
	}
}

func TestSearchReturnsEveryExactMatch(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, catalog.NewDVD("Dune", "Villeneuve", "155"))
	require.NoError(t, err)

	items, result := svc.SearchItem(ctx, "Dune")
	require.Equal(t, StatusFound, result.Status)
	require.Len(t, items, 2)
	assert.Equal(t, catalog.KindBook, items[0].Type())
	assert.Equal(t, catalog.KindDVD, items[1].Type())

	items, _ = svc.SearchItem(ctx, "dune")
	assert.Empty(t, items, "titles match exactly")
}

func TestIssueOnlyReachesFirstMatch(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	_, err := svc.AddItem(ctx, catalog.NewDVD("Dune", "Villeneuve", "155"))
	require.NoError(t, err)

	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)
	result := svc.IssueItem(ctx, "Dune", "U2")

	assert.Equal(t, StatusAlreadyIssued, result.Status)
	items, _ := svc.SearchItem(ctx, "Dune")
	assert.False(t, items[1].IsIssued())
}

func TestListingsKeepInsertionOrder(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()

	assert.Equal(t, []string{
		"Book - Title: Dune, Author: Herbert, ISBN: ISBN1, Genre: Science Fiction, Status: Available",
		"Magazine - Title: Wired, Author: Conde Nast, Issue Number: 42, Status: Available",
		"DVD - Title: Alien, Author: Scott, Duration: 117, Status: Available",
	}, svc.DisplayItems(ctx))
	assert.Equal(t, []string{
		"Name: Alice, User ID: U1",
		"Name: Bob, User ID: U2",
	}, svc.DisplayUsers(ctx))
}

func TestSnapshotsCannotMutateCatalog(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()

	items := svc.Items(ctx)
	items[0].Issue("U2")
	assert.False(t, itemTitled(t, svc, "Dune").IsIssued())

	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)
	user, _ := svc.GetUser(ctx, "U1")
	user.ReturnItem("Dune")
	assert.Equal(t, []string{"Dune"}, borrowed(t, svc, "U1"))
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, catalog.NewBook("  ", "Nobody", "X", catalog.Fiction))
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = svc.AddItem(ctx, catalog.Item{Title: "Bare"})
	assert.ErrorIs(t, err, ErrMissingKind)

	_, err = svc.AddUser(ctx, membership.NewUser("Nobody", ""))
	assert.ErrorIs(t, err, ErrMissingUserID)

	_, err = svc.AddUser(ctx, membership.NewUser("Alice", "U1"))
	require.NoError(t, err)
	_, err = svc.AddUser(ctx, membership.NewUser("Alice again", "U1"))
	assert.ErrorIs(t, err, ErrDuplicateUser)
	assert.Len(t, svc.Users(ctx), 1)
}

func TestAddItemAssignsIDAndResetsState(t *testing.T) {
	svc := newTestService(t)
	item := catalog.NewBook("Dune", "Herbert", "ISBN1", catalog.ScienceFiction)
	item.Issue("U1")

	added, err := svc.AddItem(context.Background(), item)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, added.ID)
	assert.False(t, added.IsIssued())
	assert.Equal(t, 1, added.Version)
}

func TestRemoveItem(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)

	stuck := svc.RemoveItem(ctx, "Dune")
	assert.Equal(t, StatusStillIssued, stuck.Status)
	assert.ErrorIs(t, stuck.Err(), ErrStillIssued)
	assert.Equal(t, "Book is issued and cannot be removed!", stuck.String())

	removed := svc.RemoveItem(ctx, "Wired")
	assert.Equal(t, StatusRemoved, removed.Status)
	assert.Equal(t, "Wired removed from the catalog!", removed.String())
	_, search := svc.SearchItem(ctx, "Wired")
	assert.Equal(t, StatusNotFound, search.Status)
	assert.Len(t, svc.Items(ctx), 2)

	assert.Equal(t, StatusNotFound, svc.RemoveItem(ctx, "Wired").Status)
}

func TestHistoryRecordsLifecycle(t *testing.T) {
	svc := givenLibrary(t)
	ctx := context.Background()
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U1").Status)
	require.Equal(t, StatusReturned, svc.ReturnItem(ctx, "Dune", "U1").Status)
	require.Equal(t, StatusIssued, svc.IssueItem(ctx, "Dune", "U2").Status)
	require.Equal(t, StatusAlreadyIssued, svc.IssueItem(ctx, "Dune", "U1").Status)

	dune := itemTitled(t, svc, "Dune")
	events, err := svc.History(ctx, dune.ID)
	require.NoError(t, err)

	var types []string
	for i, event := range events {
		types = append(types, event.EventType)
		assert.Equal(t, i+1, event.Version)
	}
	assert.Equal(t, []string{EventItemAdded, EventItemIssued, EventItemReturned, EventItemIssued}, types)

	var issued ItemIssuedEvent
	require.NoError(t, events[1].Decode(&issued))
	assert.Equal(t, "U1", issued.UserID)
	assert.Equal(t, dune.ID, issued.ItemID)
}
