package server

import (
	"foodfeed/internal/middleware"
	"foodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// DeleteImageField is the checkbox that asks to drop the profile picture.
const DeleteImageField = "delete_image_toggle"

// ViewProfile handles GET /user-profile/:profileId
func (s *Server) ViewProfile(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "profileId")
	if err != nil {
		return nil
	}
	page, err := s.profileService.GetProfile(c.UserContext(), profileID)
	if err != nil {
		return s.respondError(c, err)
	}
	return s.render(c, fiber.Map{
		"profile": page.Profile,
		"posts":   page.Posts,
	})
}

// EditProfileForm handles GET /user-profile/:profileId/edit
func (s *Server) EditProfileForm(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "profileId")
	if err != nil {
		return nil
	}
	profile, o, err := s.profileService.EditableProfile(c.UserContext(), middleware.ActingIdentity(c), profileID)
	if err != nil {
		return s.respondError(c, err)
	}
	if profile == nil {
		return s.redirectWith(c, "/", o.Messages...)
	}
	return s.render(c, fiber.Map{
		"profile": profile,
		"form": fiber.Map{
			"fields":         []string{"username", "bio", "image", DeleteImageField},
			"accepted_types": acceptedImageTypes(),
		},
	})
}

// EditProfile handles POST /user-profile/:profileId/edit. Refusals go back
// to the feed; everything else returns to the profile.
func (s *Server) EditProfile(c *fiber.Ctx) error {
	profileID, err := s.parseID(c, "profileId")
	if err != nil {
		return nil
	}
	who := middleware.ActingIdentity(c)
	in := service.ProfileEditInput{
		Bio:               c.FormValue("bio"),
		Username:          c.FormValue("username"),
		DeleteImageToggle: c.FormValue(DeleteImageField),
	}
	if who.Authenticated() {
		img, err := s.formImage(c)
		if err != nil {
			return s.imageFailure(c, err, profileURL(profileID), service.MsgProfileUpdateFailed)
		}
		in.Image = img
	}

	o, err := s.profileService.EditProfile(c.UserContext(), who, profileID, in)
	if err != nil {
		return s.respondError(c, err)
	}
	target := profileURL(profileID)
	if o.Kind == service.Denied {
		target = "/"
	}
	return s.redirectWith(c, target, o.Messages...)
}
