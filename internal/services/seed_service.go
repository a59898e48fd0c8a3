package services

import (
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/repositories"

	"golang.org/x/crypto/bcrypt"
)

// SeedService wipes the catalog and repopulates it with the demo data set.
// Each product is created through the regular create path one row at a time;
// there is no transactional guarantee across the whole batch.
type SeedService struct {
	productService *ProductService
	userRepo       repositories.UserRepository
}

// NewSeedService creates a new SeedService.
func NewSeedService(productService *ProductService, userRepo repositories.UserRepository) *SeedService {
	return &SeedService{
		productService: productService,
		userRepo:       userRepo,
	}
}

var seedProducts = []CreateProductInput{
	{
		Title:       "Men's Chill Crew Neck Sweatshirt",
		Price:       75,
		Description: "Introducing the softest crew neck in the collection, made from heavyweight cotton.",
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "male",
		Tags:        []string{"sweatshirt"},
		Images:      []string{"1740176-00-A_0_2000.jpg", "1740176-00-A_1.jpg"},
	},
	{
		Title:       "Men's Quilted Shirt Jacket",
		Price:       200,
		Description: "A lightweight quilted jacket with a cropped silhouette for versatile styling.",
		Sizes:       []string{"XS", "S", "M", "XL", "XXL"},
		Gender:      "male",
		Tags:        []string{"jacket"},
		Images:      []string{"1740507-00-A_0_2000.jpg", "1740507-00-A_1.jpg"},
	},
	{
		Title:       "Women's Cropped Puffer Jacket",
		Price:       225,
		Description: "A cropped silhouette with an insulated shell for warmth without the bulk.",
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "female",
		Tags:        []string{"jacket", "puffer"},
		Images:      []string{"1654219-00-A_0_2000.jpg", "1654219-00-A_1.jpg"},
	},
	{
		Title:       "Women's T Logo Short Sleeve Scoop Neck Tee",
		Price:       35,
		Description: "A classic scoop neck tee in soft Peruvian cotton.",
		Sizes:       []string{"XS", "S", "M", "L", "XL", "XXL"},
		Gender:      "female",
		Tags:        []string{"shirt"},
		Images:      []string{"8765090-00-A_0_2000.jpg", "8765090-00-A_1.jpg"},
	},
	{
		Title:       "Kids Cyberquad Bomber Jacket",
		Price:       65,
		Description: "A bomber jacket with a matte finish and Cyberquad details.",
		Sizes:       []string{"XS", "S", "M"},
		Gender:      "unisex",
		Tags:        []string{"jacket", "kids"},
		Images:      []string{"1742702-00-A_0_2000.jpg", "1742702-00-A_1.jpg"},
	},
}

// Run wipes all products, ensures the demo owner account exists and inserts
// the seed catalog.
func (s *SeedService) Run() error {
	count, err := s.productService.DeleteAllProducts()
	if err != nil {
		return fmt.Errorf("seed failed while clearing catalog: %w", err)
	}
	log.Printf("Seed: removed %d existing products", count)

	owner, err := s.ensureSeedUser()
	if err != nil {
		return fmt.Errorf("seed failed while creating demo user: %w", err)
	}

	for _, input := range seedProducts {
		if _, err := s.productService.CreateProduct(input, owner); err != nil {
			return fmt.Errorf("seed failed while inserting %q: %w", input.Title, err)
		}
	}

	log.Printf("Seed: inserted %d products", len(seedProducts))
	return nil
}

func (s *SeedService) ensureSeedUser() (*models.User, error) {
	if user, err := s.userRepo.GetByUsername("demo"); err == nil && user != nil {
		return user, nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Demo123456"), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: "demo",
		Email:    "demo@example.com",
		Password: string(hashed),
		FullName: "Demo User",
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}
	return user, nil
}
