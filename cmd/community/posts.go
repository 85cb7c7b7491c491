package main

import (
	"fmt"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/community-client/api"
	"github.com/jrsteele09/community-client/auth"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func postList(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("post list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	snap := env.session.Snapshot()
	posts := snap.Posts
	var err error
	switch {
	case c.Bool(flagExplore):
		posts, err = env.client.ExploreFeed(c.Context, env.session)
	case c.Bool(flagRefresh) && snap.CommunityID != "":
		posts, err = env.client.CommunityFeed(c.Context, env.session, snap.CommunityID)
	case c.Bool(flagRefresh):
		posts, err = env.client.ExploreFeed(c.Context, env.session)
	}
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	if len(posts) == 0 {
		fmt.Println("No posts found.")
		return nil
	}

	return printOutput(output, "list posts", posts, func(table *uitable.Table) {
		table.AddRow("ID", "TITLE", "CREATED")
		for _, post := range posts {
			table.AddRow(post.ID, post.Title, post.CreatedAt)
		}
	})
}

func postCreate(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 2 {
		return errors.New(
			"post create requires two arguments-- a title and the content",
		)
	}

	snap := env.session.Snapshot()
	if snap.User == nil {
		return errors.New(auth.NotLoggedInMessage)
	}

	post, err := env.client.CreatePost(c.Context, env.session, api.CreatePostRequest{
		Title:     c.Args().Get(0),
		Content:   c.Args().Get(1),
		Author:    snap.User.ID,
		Community: snap.CommunityID,
	})
	if err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Created post %q.\n", post.ID)
	return nil
}

func postLike(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("post like requires one argument-- a post ID")
	}
	postID := c.Args().Get(0)

	if err := env.client.LikePost(c.Context, env.session, postID); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Liked post %q.\n", postID)
	return nil
}

func postComment(c *cli.Context, env *environment) error {
	// Args
	if c.Args().Len() != 2 {
		return errors.New(
			"post comment requires two arguments-- a post ID and the comment",
		)
	}
	postID := c.Args().Get(0)

	if err := env.client.CommentOnPost(c.Context, env.session, postID, c.Args().Get(1)); err != nil {
		return errors.New(auth.UserMessage(err, auth.GenericErrorMessage))
	}

	fmt.Printf("Commented on post %q.\n", postID)
	return nil
}
