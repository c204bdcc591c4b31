package server

import (
	"maps"
	"slices"
	"strconv"

	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/service"
	"foodfeed/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// Feed handles GET /?page=N
func (s *Server) Feed(c *fiber.Ctx) error {
	page := service.LastPage
	if raw := c.Query("page", "1"); raw != "last" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return models.RespondWithError(c, fiber.StatusNotFound, models.NewNotFoundError("Page", raw))
		}
		page = n
	}

	feed, err := s.postService.Feed(c.UserContext(), page)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.render(c, fiber.Map{
		"posts": feed.Posts,
		"page":  feed.Page,
	})
}

// ViewPost handles GET /view-post/:postId
func (s *Server) ViewPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	detail, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.render(c, fiber.Map{
		"post":     detail.Post,
		"comments": detail.Comments,
	})
}

// CreatePostForm handles GET /create-post
func (s *Server) CreatePostForm(c *fiber.Ctx) error {
	if !middleware.ActingIdentity(c).Authenticated() {
		return s.redirectWith(c, "/", models.Info(service.MsgSignInToPost))
	}
	return s.render(c, fiber.Map{
		"form": fiber.Map{
			"fields":         []string{"text", "image"},
			"max_text":       validation.MaxPostTextLength,
			"accepted_types": acceptedImageTypes(),
		},
	})
}

// CreatePost handles POST /create-post
func (s *Server) CreatePost(c *fiber.Ctx) error {
	who := middleware.ActingIdentity(c)
	in := service.CreatePostInput{Text: c.FormValue("text")}
	if who.Authenticated() {
		img, err := s.formImage(c)
		if err != nil {
			return s.imageFailure(c, err, "/", service.MsgPostCreateFailed)
		}
		in.Image = img
	}

	o, err := s.postService.CreatePost(c.UserContext(), who, in)
	return s.finish(c, o, err, "/")
}

// EditPostForm handles GET /edit-post/:postId
func (s *Server) EditPostForm(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	post, o, err := s.postService.EditablePost(c.UserContext(), middleware.ActingIdentity(c), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	if post == nil {
		return s.redirectWith(c, "/", o.Messages...)
	}
	return s.render(c, fiber.Map{"post": post})
}

// EditPost handles POST /edit-post/:postId
func (s *Server) EditPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	o, err := s.postService.EditPost(c.UserContext(), middleware.ActingIdentity(c), postID, c.FormValue("text"))
	return s.finish(c, o, err, "/")
}

// DeletePost handles POST /delete-post/:postId
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	o, err := s.postService.DeletePost(c.UserContext(), middleware.ActingIdentity(c), postID)
	return s.finish(c, o, err, "/")
}

func acceptedImageTypes() []string {
	return slices.Sorted(maps.Keys(validation.AcceptedImageTypes))
}
