package server

import (
	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateCommentForm handles GET /create-comment/:postId
func (s *Server) CreateCommentForm(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	if !middleware.ActingIdentity(c).Authenticated() {
		return s.redirectWith(c, "/", models.Info(service.MsgSignInToComment))
	}
	detail, err := s.postService.GetPost(c.UserContext(), postID)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.render(c, fiber.Map{
		"post": detail.Post,
		"form": fiber.Map{"fields": []string{"body"}},
	})
}

// CreateComment handles POST /create-comment/:postId
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	o, err := s.commentService.CreateComment(c.UserContext(), middleware.ActingIdentity(c), postID, c.FormValue("body"))
	return s.finish(c, o, err, "/")
}

// ViewComment handles GET /view-post/:postId/view-comment/:commentId
func (s *Server) ViewComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, err := s.commentService.GetComment(c.UserContext(), postID, commentID)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.render(c, fiber.Map{"comment": comment})
}

// EditCommentForm handles GET /edit-post/:postId/edit-comment/:commentId
func (s *Server) EditCommentForm(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	comment, o, err := s.commentService.EditableComment(c.UserContext(), middleware.ActingIdentity(c), postID, commentID)
	if err != nil {
		return s.respondError(c, err)
	}
	if comment == nil {
		return s.redirectWith(c, "/", o.Messages...)
	}
	return s.render(c, fiber.Map{"comment": comment})
}

// EditComment handles POST /edit-post/:postId/edit-comment/:commentId
func (s *Server) EditComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "postId")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	o, err := s.commentService.EditComment(c.UserContext(), middleware.ActingIdentity(c), postID, commentID, c.FormValue("body"))
	return s.finish(c, o, err, "/")
}

// DeleteComment handles POST /delete-comment/:commentId
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}
	o, err := s.commentService.DeleteComment(c.UserContext(), middleware.ActingIdentity(c), commentID)
	return s.finish(c, o, err, "/")
}
