package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"devconnector/apperr"
	"devconnector/database"
	"devconnector/github"
	"devconnector/models"
	"devconnector/profile"
	"devconnector/subdoc"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const noProfile = "There is no profile for this user"

type ExperienceRequest struct {
	Title       string `json:"title" validate:"required" msg:"Title is required"`
	Company     string `json:"company" validate:"required" msg:"Company is required"`
	Location    string `json:"location"`
	From        string `json:"from" validate:"required" msg:"From date is required"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

type EducationRequest struct {
	School       string `json:"school" validate:"required" msg:"School is required"`
	Degree       string `json:"degree" validate:"required" msg:"Degree is required"`
	FieldOfStudy string `json:"fieldofstudy" validate:"required" msg:"Field of study is required"`
	From         string `json:"from" validate:"required" msg:"From date is required"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// GetMyProfile handles GET /api/profile/me.
func (h *Handler) GetMyProfile(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	p, err := h.profiles.FindByUser(ctx, userID)
	if err != nil {
		h.fail(c, notFoundAs(err, noProfile))
		return
	}
	if err := h.attachOwners(c, p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpsertProfile handles POST /api/profile.
func (h *Handler) UpsertProfile(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	var in profile.Input
	if err := bind(c, &in); err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	p, err := h.profiles.Upsert(ctx, userID, profile.BuildFields(in))
	if errors.Is(err, database.ErrDuplicate) {
		h.fail(c, apperr.Conflict("Profile is being created by another request, try again"))
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// ListProfiles handles GET /api/profile.
func (h *Handler) ListProfiles(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	profiles, err := h.profiles.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	ptrs := make([]*models.Profile, len(profiles))
	for i := range profiles {
		ptrs[i] = &profiles[i]
	}
	if err := h.attachOwners(c, ptrs...); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfileByUser handles GET /api/profile/user/:user_id.
func (h *Handler) GetProfileByUser(c *gin.Context) {
	userID, err := objectIDParam(c, "user_id", "Profile not found")
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	p, err := h.profiles.FindByUser(ctx, userID)
	if err != nil {
		h.fail(c, notFoundAs(err, "Profile not found"))
		return
	}
	if err := h.attachOwners(c, p); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// DeleteAccount handles DELETE /api/profile: the caller's posts, profile and
// user are all removed.
func (h *Handler) DeleteAccount(c *gin.Context) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	if err := h.posts.DeleteByUser(ctx, userID); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.profiles.DeleteByUser(ctx, userID); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.users.Delete(ctx, userID); err != nil {
		h.fail(c, err)
		return
	}

	h.logger.Info("account deleted", zap.String("user_id", userID.Hex()))
	c.JSON(http.StatusOK, gin.H{"msg": "User deleted"})
}

// AddExperience handles PUT /api/profile/experience.
func (h *Handler) AddExperience(c *gin.Context) {
	var req ExperienceRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := dateRange(req.From, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.editProfile(c, func(p *models.Profile) error {
		p.Experience = subdoc.Insert(p.Experience, models.Experience{
			Title:       req.Title,
			Company:     req.Company,
			Location:    req.Location,
			From:        from,
			To:          to,
			Current:     req.Current,
			Description: req.Description,
		})
		return nil
	})
}

// DeleteExperience handles DELETE /api/profile/experience/:exp_id.
func (h *Handler) DeleteExperience(c *gin.Context) {
	expID, err := objectIDParam(c, "exp_id", "Experience not found")
	if err != nil {
		h.fail(c, err)
		return
	}

	h.editProfile(c, func(p *models.Profile) error {
		list, removed := subdoc.RemoveByEntryID(p.Experience, expID)
		if !removed {
			return apperr.NotFound("Experience not found")
		}
		p.Experience = list
		return nil
	})
}

// AddEducation handles PUT /api/profile/education.
func (h *Handler) AddEducation(c *gin.Context) {
	var req EducationRequest
	if err := bind(c, &req); err != nil {
		h.fail(c, err)
		return
	}
	from, to, err := dateRange(req.From, req.To)
	if err != nil {
		h.fail(c, err)
		return
	}

	h.editProfile(c, func(p *models.Profile) error {
		p.Education = subdoc.Insert(p.Education, models.Education{
			School:       req.School,
			Degree:       req.Degree,
			FieldOfStudy: req.FieldOfStudy,
			From:         from,
			To:           to,
			Current:      req.Current,
			Description:  req.Description,
		})
		return nil
	})
}

// DeleteEducation handles DELETE /api/profile/education/:edu_id.
func (h *Handler) DeleteEducation(c *gin.Context) {
	eduID, err := objectIDParam(c, "edu_id", "Education not found")
	if err != nil {
		h.fail(c, err)
		return
	}

	h.editProfile(c, func(p *models.Profile) error {
		list, removed := subdoc.RemoveByEntryID(p.Education, eduID)
		if !removed {
			return apperr.NotFound("Education not found")
		}
		p.Education = list
		return nil
	})
}

// GitHubRepos handles GET /api/profile/github/:username.
func (h *Handler) GitHubRepos(c *gin.Context) {
	ctx, cancel := h.context(c)
	defer cancel()

	repos, err := h.github.Repos(ctx, c.Param("username"))
	if errors.Is(err, github.ErrNotFound) {
		h.fail(c, apperr.Upstream("No Github profile found", true, err))
		return
	}
	if err != nil {
		h.fail(c, apperr.Upstream("GitHub is unavailable", false, err))
		return
	}
	c.JSON(http.StatusOK, repos)
}

// editProfile loads the caller's profile, applies edit, saves and returns it.
func (h *Handler) editProfile(c *gin.Context, edit func(p *models.Profile) error) {
	userID, err := currentUser(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	ctx, cancel := h.context(c)
	defer cancel()

	p, err := h.profiles.FindByUser(ctx, userID)
	if err != nil {
		h.fail(c, notFoundAs(err, noProfile))
		return
	}
	if err := edit(p); err != nil {
		h.fail(c, err)
		return
	}
	if err := h.profiles.Save(ctx, p); err != nil {
		h.fail(c, notFoundAs(err, noProfile))
		return
	}
	c.JSON(http.StatusOK, p)
}

// attachOwners fills in Owner with the name and avatar of each profile's user.
func (h *Handler) attachOwners(c *gin.Context, profiles ...*models.Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	ctx, cancel := h.context(c)
	defer cancel()

	ids := make([]primitive.ObjectID, 0, len(profiles))
	for _, p := range profiles {
		ids = append(ids, p.User)
	}
	owners, err := h.users.FindSummaries(ctx, ids)
	if err != nil {
		return err
	}

	for _, p := range profiles {
		if owner, ok := owners[p.User]; ok {
			p.Owner = owner
		} else {
			p.Owner = &models.UserSummary{ID: p.User}
		}
	}
	return nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

// dateRange parses a required from-date and an optional to-date.
func dateRange(from, to string) (time.Time, *time.Time, error) {
	var errs []apperr.FieldError

	f, err := parseDate(from)
	if err != nil {
		errs = append(errs, apperr.FieldError{Msg: "From date must be a date", Param: "from"})
	}

	var t *time.Time
	if to != "" {
		parsed, err := parseDate(to)
		if err != nil {
			errs = append(errs, apperr.FieldError{Msg: "To date must be a date", Param: "to"})
		} else {
			t = &parsed
		}
	}

	if len(errs) > 0 {
		return time.Time{}, nil, apperr.ValidationFailed(errs)
	}
	return f, t, nil
}
