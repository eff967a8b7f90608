package handlers

import (
	"github.com/arzan03/FitnexFitness/internal/db"
	"github.com/gofiber/fiber/v2"
)

func (h *Handler) list(c *fiber.Ctx, collection string) error {
	docs, err := h.resources.List(c.UserContext(), collection)
	if err != nil {
		return err
	}
	return c.JSON(docs)
}

// create inserts the request body as sent. The store assigns the _id.
func (h *Handler) create(c *fiber.Ctx, collection string) error {
	doc, err := h.document(c)
	if err != nil {
		return err
	}
	result, err := h.resources.Create(c.UserContext(), collection, doc.Without("_id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) deleteByID(c *fiber.Ctx, collection string) error {
	result, err := h.resources.DeleteByID(c.UserContext(), collection, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) ListFeatured(c *fiber.Ctx) error { return h.list(c, db.FeaturedCollection) }

func (h *Handler) ListTestimonials(c *fiber.Ctx) error { return h.list(c, db.TestimonialsCollection) }

func (h *Handler) ListSubscribers(c *fiber.Ctx) error { return h.list(c, db.SubscribersCollection) }

func (h *Handler) ListTrainers(c *fiber.Ctx) error { return h.list(c, db.TrainersCollection) }

func (h *Handler) ListClasses(c *fiber.Ctx) error { return h.list(c, db.ClassesCollection) }

func (h *Handler) ListForums(c *fiber.Ctx) error { return h.list(c, db.ForumsCollection) }

func (h *Handler) ListChallenges(c *fiber.Ctx) error { return h.list(c, db.ChallengesCollection) }

func (h *Handler) CreateFeatured(c *fiber.Ctx) error { return h.create(c, db.FeaturedCollection) }

func (h *Handler) CreateTestimonial(c *fiber.Ctx) error {
	return h.create(c, db.TestimonialsCollection)
}

// Subscribe records a newsletter signup. Repeated emails are kept.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	return h.create(c, db.SubscribersCollection)
}

// ApplyTrainer stores a trainer application.
func (h *Handler) ApplyTrainer(c *fiber.Ctx) error {
	return h.create(c, db.TrainersCollection)
}

// PromoteTrainer accepts a trainer application by id.
func (h *Handler) PromoteTrainer(c *fiber.Ctx) error {
	result, err := h.users.PromoteApplication(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(result)
}

func (h *Handler) DeleteTrainer(c *fiber.Ctx) error { return h.deleteByID(c, db.TrainersCollection) }

func (h *Handler) CreateClass(c *fiber.Ctx) error {
	return h.create(c, db.ClassesCollection)
}

func (h *Handler) CreateForumPost(c *fiber.Ctx) error {
	return h.create(c, db.ForumsCollection)
}

func (h *Handler) DeleteForumPost(c *fiber.Ctx) error { return h.deleteByID(c, db.ForumsCollection) }

func (h *Handler) CreateChallenge(c *fiber.Ctx) error {
	return h.create(c, db.ChallengesCollection)
}
