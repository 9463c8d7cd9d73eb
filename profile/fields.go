// Package profile turns the optional inputs of a profile form into a
// partial update that can create or merge a Profile.
package profile

import (
	"strings"
	"time"

	"devconnector/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Input is the raw profile form. Empty strings mean "not supplied".
type Input struct {
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	Status         string `json:"status" validate:"required" msg:"Status is required"`
	GitHubUsername string `json:"githubusername"`
	Skills         string `json:"skills" validate:"required" msg:"Skills is required"`
	YouTube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Facebook       string `json:"facebook"`
	LinkedIn       string `json:"linkedin"`
	Instagram      string `json:"instagram"`
}

// Fields is a partial profile. A nil pointer or nil Skills means the field
// was not supplied and must not be touched.
type Fields struct {
	Company        *string
	Website        *string
	Location       *string
	Bio            *string
	Status         *string
	GitHubUsername *string
	Skills         []string
	Social         SocialFields
}

type SocialFields struct {
	YouTube   *string
	Twitter   *string
	Facebook  *string
	LinkedIn  *string
	Instagram *string
}

func BuildFields(in Input) Fields {
	f := Fields{
		Company:        present(in.Company),
		Website:        present(in.Website),
		Location:       present(in.Location),
		Bio:            present(in.Bio),
		Status:         present(in.Status),
		GitHubUsername: present(in.GitHubUsername),
		Social: SocialFields{
			YouTube:   present(in.YouTube),
			Twitter:   present(in.Twitter),
			Facebook:  present(in.Facebook),
			LinkedIn:  present(in.LinkedIn),
			Instagram: present(in.Instagram),
		},
	}
	if in.Skills != "" {
		f.Skills = SplitSkills(in.Skills)
	}
	return f
}

// SplitSkills splits on commas and trims each token. Empty tokens are kept.
func SplitSkills(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func present(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// SetDocument is the $set half of an upsert. Social links are set by path so
// links that were not supplied survive.
func (f Fields) SetDocument() bson.M {
	set := bson.M{}
	put := func(key string, v *string) {
		if v != nil {
			set[key] = *v
		}
	}

	put("company", f.Company)
	put("website", f.Website)
	put("location", f.Location)
	put("bio", f.Bio)
	put("status", f.Status)
	put("githubusername", f.GitHubUsername)
	if f.Skills != nil {
		set["skills"] = f.Skills
	}

	put("social.youtube", f.Social.YouTube)
	put("social.twitter", f.Social.Twitter)
	put("social.facebook", f.Social.Facebook)
	put("social.linkedin", f.Social.LinkedIn)
	put("social.instagram", f.Social.Instagram)
	return set
}

// InsertDefaults is the $setOnInsert half of an upsert: the owner and the
// defaults of a new profile, minus anything SetDocument already sets.
func (f Fields) InsertDefaults(userID primitive.ObjectID, now time.Time) bson.M {
	doc := bson.M{
		"user":       userID,
		"experience": bson.A{},
		"education":  bson.A{},
		"date":       now,
	}
	if f.Skills == nil {
		doc["skills"] = bson.A{}
	}
	return doc
}

// Update is the complete upsert update document.
func (f Fields) Update(userID primitive.ObjectID, now time.Time) bson.M {
	update := bson.M{"$setOnInsert": f.InsertDefaults(userID, now)}
	if set := f.SetDocument(); len(set) > 0 {
		update["$set"] = set
	}
	return update
}

// ApplyTo merges f into p in memory with the same semantics as Update.
func (f Fields) ApplyTo(p *models.Profile) {
	assign := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}

	assign(&p.Company, f.Company)
	assign(&p.Website, f.Website)
	assign(&p.Location, f.Location)
	assign(&p.Bio, f.Bio)
	assign(&p.Status, f.Status)
	assign(&p.GitHubUsername, f.GitHubUsername)
	if f.Skills != nil {
		p.Skills = append([]string(nil), f.Skills...)
	}

	assign(&p.Social.YouTube, f.Social.YouTube)
	assign(&p.Social.Twitter, f.Social.Twitter)
	assign(&p.Social.Facebook, f.Social.Facebook)
	assign(&p.Social.LinkedIn, f.Social.LinkedIn)
	assign(&p.Social.Instagram, f.Social.Instagram)
}

// New builds the profile an upsert creates when userID has none.
func (f Fields) New(userID primitive.ObjectID, now time.Time) *models.Profile {
	p := &models.Profile{
		User:       userID,
		Skills:     []string{},
		Experience: []models.Experience{},
		Education:  []models.Education{},
		Date:       now,
	}
	f.ApplyTo(p)
	return p
}
