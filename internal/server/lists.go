package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/desertthunder/songbook/internal/models"
	"github.com/desertthunder/songbook/internal/web"
)

// ListCatalog is the custom-list service the list routes act on.
type ListCatalog interface {
	Names(ctx context.Context) ([]string, error)
	Entries(ctx context.Context, name string) ([]string, error)
	Add(ctx context.Context, user models.UserInfo, name, hash string) (bool, error)
	Remove(ctx context.Context, user models.UserInfo, name, hash string) error
}

// ListActions holds the custom list and identity route actions.
type ListActions struct {
	lists ListCatalog
}

func NewListActions(lists ListCatalog) *ListActions {
	return &ListActions{lists: lists}
}

type listEntry struct {
	List     string `json:"list"`
	SongHash string `json:"song_hash"`
}

// Index returns the names of every custom list.
func (a *ListActions) Index(ctx context.Context, req Request) (Result, error) {
	names, err := a.lists.Names(ctx)
	if err != nil {
		return Result{}, err
	}

	links := web.Links{Items: make([]web.Link, len(names)), Empty: "No custom lists yet."}
	for i, name := range names {
		links.Items[i] = web.Link{Href: "/custom/list/" + url.PathEscape(name), Text: name}
	}
	return Result{Value: names, View: viewLists, Title: "Custom lists", HTML: links}, nil
}

// Show returns the song hashes on one list.
func (a *ListActions) Show(ctx context.Context, req Request) (Result, error) {
	name := req.Vars["list"]
	hashes, err := a.lists.Entries(ctx, name)
	if err != nil {
		return Result{}, err
	}

	links := web.Links{Items: make([]web.Link, len(hashes)), Empty: "This list is empty."}
	for i, hash := range hashes {
		links.Items[i] = web.Link{Text: hash}
	}
	return Result{Value: hashes, View: viewLists, Title: name, HTML: links}, nil
}

// Add puts a song on the signed-in user's list: 201 when added, 200 when already present.
func (a *ListActions) Add(ctx context.Context, req Request) (Result, error) {
	entry := listEntry{List: req.Vars["list"], SongHash: req.Vars["song_hash"]}

	added, err := a.lists.Add(ctx, *req.User, entry.List, entry.SongHash)
	if err != nil {
		return Result{}, err
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	return Result{Status: status, Value: entry, View: viewLists, Title: entry.List,
		HTML: web.Links{Items: []web.Link{{Text: entry.SongHash}}}}, nil
}

// Remove takes a song off the signed-in user's list.
func (a *ListActions) Remove(ctx context.Context, req Request) (Result, error) {
	if err := a.lists.Remove(ctx, *req.User, req.Vars["list"], req.Vars["song_hash"]); err != nil {
		return Result{}, err
	}
	return Result{Status: http.StatusNoContent}, nil
}

// Me returns the signed-in user.
func (a *ListActions) Me(_ context.Context, req Request) (Result, error) {
	user := *req.User
	links := web.Links{Items: []web.Link{
		{Href: "/custom/list/" + url.PathEscape(user.CID), Text: user.Nick + " (" + user.CID + ")"},
		{Href: "/logout", Text: "Sign out"},
	}}
	return Result{Value: user, View: viewLists, Title: "Signed in", HTML: links}, nil
}
