package main

import (
	"context"
	"log"
	"log/slog"

	"marketplace-service/internal/config"
	"marketplace-service/internal/database"
	"marketplace-service/internal/models"
	"marketplace-service/internal/repositories/postgres"
	"marketplace-service/internal/services"

	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	ctx := context.Background()

	slog.Info("Starting database seeding...")

	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Migration failed:", err)
	}

	slog.Info("Database connection established")

	userRepo := postgres.NewUserRepository(db)
	productRepo := postgres.NewProductRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	chatRepo := postgres.NewChatRepository(db)

	slog.Info("Creating initial users...")

	seedUsers := []struct {
		name     string
		email    string
		password string
		role     models.UserRole
	}{
		{"Alice's Antiques", "alice@marketplace.dev", "123456", models.RoleMerchant},
		{"Bob's Books", "bob@marketplace.dev", "123456", models.RoleMerchant},
		{"Charlie", "charlie@marketplace.dev", "123456", models.RoleCustomer},
		{"Dana", "dana@marketplace.dev", "123456", models.RoleCustomer},
	}

	byEmail := make(map[string]*models.User)
	for _, data := range seedUsers {
		hashed, _ := bcrypt.GenerateFromPassword([]byte(data.password), bcrypt.DefaultCost)
		user := &models.User{
			Name:     data.name,
			Email:    data.email,
			Password: string(hashed),
			Role:     data.role,
		}
		if err := userRepo.Create(ctx, user); err != nil {
			slog.Warn("User might already exist", "email", data.email, "error", err)
			if existing, err := userRepo.FindByEmail(ctx, data.email); err == nil {
				user = existing
			}
		} else {
			slog.Info("Created user", "email", data.email, "id", user.ID, "role", data.role)
		}
		byEmail[data.email] = user
	}

	slog.Info("Creating initial products...")

	seedProducts := []struct {
		owner    string
		name     string
		desc     string
		price    float64
		quantity int
	}{
		{"alice@marketplace.dev", "Brass Compass", "Victorian era, working condition", 89.00, 3},
		{"alice@marketplace.dev", "Oak Writing Desk", "Restored, minor scratches", 450.00, 1},
		{"bob@marketplace.dev", "First Edition Atlas", "1952 printing", 120.00, 2},
		{"bob@marketplace.dev", "Paperback Bundle", "Ten assorted novels", 15.00, 40},
	}

	for _, data := range seedProducts {
		owner, ok := byEmail[data.owner]
		if !ok {
			continue
		}
		product := &models.Product{
			Name:        data.name,
			Description: data.desc,
			Price:       data.price,
			Quantity:    data.quantity,
			UserID:      owner.ID,
		}
		if err := productRepo.Create(ctx, product); err != nil {
			slog.Warn("Failed to create product", "name", data.name, "error", err)
		} else {
			slog.Info("Created product", "name", data.name, "id", product.ID)
		}
	}

	slog.Info("Creating a sample order...")

	orderService := services.NewOrderService(orderRepo, productRepo, userRepo)
	if charlie, ok := byEmail["charlie@marketplace.dev"]; ok {
		products, err := productRepo.FindAll(ctx)
		if err == nil && len(products) > 0 {
			order, err := orderService.CreateOrder(ctx, charlie.ID, models.CreateOrderRequest{
				Items: []models.OrderItem{{ProductID: products[0].ID, Quantity: 1}},
			})
			if err != nil {
				slog.Warn("Failed to create sample order", "error", err)
			} else {
				slog.Info("Created sample order", "id", order.ID, "total", order.TotalAmount)
			}
		}
	}

	slog.Info("Creating sample messages...")

	samples := []struct {
		from, to string
		text     string
	}{
		{"charlie@marketplace.dev", "alice@marketplace.dev", "Hi! Is the brass compass still available?"},
		{"alice@marketplace.dev", "charlie@marketplace.dev", "It is! Three left in stock."},
		{"dana@marketplace.dev", "bob@marketplace.dev", "Does the atlas ship internationally?"},
	}

	for _, data := range samples {
		sender, okS := byEmail[data.from]
		receiver, okR := byEmail[data.to]
		if !okS || !okR {
			continue
		}
		chat := &models.Chat{
			Content:    data.text,
			SenderID:   sender.ID,
			ReceiverID: receiver.ID,
		}
		if err := chatRepo.Create(ctx, chat); err != nil {
			slog.Warn("Failed to create message", "error", err)
		}
	}

	slog.Info("Database seeding completed successfully!")
}
