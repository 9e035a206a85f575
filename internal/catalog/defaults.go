package catalog

import (
	"github.com/shopspring/decimal"

	"marmitaria/internal/models"
)

// Defaults is the vendor's standard menu, used to seed an empty store and
// when the service runs without a database.
func Defaults() Data {
	return Data{
		Ingredients: defaultIngredients(),
		Extras: []models.ExtraItem{
			{ID: "extra-1", Name: "Ovo Frito", Price: money("2.00"), Active: true},
			{ID: "extra-2", Name: "Carne Extra", Price: money("3.00"), Active: true},
			{ID: "extra-3", Name: "Banana Frita", Price: money("3.00"), Active: true},
		},
		SizePrices: []models.SizePrice{
			{Size: models.SizeSmall, Price: money("15.00")},
			{Size: models.SizeMedium, Price: money("18.00")},
			{Size: models.SizeLarge, Price: money("22.00")},
		},
		Zones: []models.DeliveryZone{
			{
				ID:   "zone-1",
				Name: "Zona 1",
				Fee:  money("1.00"),
				Neighborhoods: []string{
					"Pq. Santa Cruz",
					"Pq. Flamboyant",
					"PUC",
					"Portaria de condomínios",
					"Salão de assembleia",
				},
			},
			{
				ID:   "zone-2",
				Name: "Zona 2",
				Fee:  money("2.00"),
				Neighborhoods: []string{
					"Jd. Bela Vista",
					"Jd. Olímpico",
					"Pq. Trindade 1",
					"Pq. Trindade 2",
					"Jd. Da Luz",
					"Pq. Laranjeiras",
					"Jd. Vitória 1",
					"Jd. Vitória 2",
					"Vila Alto da Glória",
				},
			},
			{
				ID:   "zone-3",
				Name: "Zona 3",
				Fee:  money("3.00"),
				Neighborhoods: []string{
					"Pq. Atheneu",
					"Pq. Trindade 3",
					"Pq. São Jorge",
					"Jd. Mariliza",
					"Condomínios Jardins",
				},
			},
		},
	}
}

func defaultIngredients() []models.Ingredient {
	return []models.Ingredient{
		{ID: "rice-1", Name: "Arroz Branco", Category: models.CategoryRice, Active: true},

		{ID: "beans-1", Name: "Feijão Tropeiro", Category: models.CategoryBeans, Active: true},
		{ID: "beans-2", Name: "Feijão de Caldo", Category: models.CategoryBeans, Active: true},
		{ID: "beans-3", Name: "Feijoada", Category: models.CategoryBeans, Active: true},

		{ID: "meat-1", Name: "Vaca na Chapa", Category: models.CategoryMeat, Active: true},
		{ID: "meat-2", Name: "Linguiça na Chapa", Category: models.CategoryMeat, Active: true},
		{ID: "meat-3", Name: "Porco na Chapa", Category: models.CategoryMeat, Active: true},
		{ID: "meat-4", Name: "Filé de Frango na Chapa", Category: models.CategoryMeat, Active: true},
		{ID: "meat-5", Name: "Costela com Mandioca", Category: models.CategoryMeat, Active: true},
		{ID: "meat-6", Name: "Carne Cozida com Mandioca", Category: models.CategoryMeat, Active: true},
		{ID: "meat-7", Name: "Frango ao Molho", Category: models.CategoryMeat, Active: true},
		{ID: "meat-8", Name: "Almôndegas ao Molho", Category: models.CategoryMeat, Active: true},
		{ID: "meat-9", Name: "Strogonoff de Frango", Category: models.CategoryMeat, Active: true},
		{ID: "meat-10", Name: "Filé de Frango Empanado", Category: models.CategoryMeat, Active: true},
		{ID: "meat-11", Name: "Filé de Peixe Empanado", Category: models.CategoryMeat, Active: true},
		{ID: "meat-12", Name: "Frango Frito", Category: models.CategoryMeat, Active: true},
		{ID: "meat-13", Name: "Bife de Porco Acebolado", Category: models.CategoryMeat, Active: true},
		{ID: "meat-14", Name: "Carne Picadinha ao Molho", Category: models.CategoryMeat, Active: true},

		{ID: "sides-1", Name: "Macarrão Vermelho", Category: models.CategorySides, Active: true},
		{ID: "sides-2", Name: "Macarrão Alho e Óleo", Category: models.CategorySides, Active: true},
		{ID: "sides-3", Name: "Batata Doce Cozida", Category: models.CategorySides, Active: true},
		{ID: "sides-4", Name: "Batata Doce Frita", Category: models.CategorySides, Active: true},
		{ID: "sides-5", Name: "Batata com Maionese e Bacon", Category: models.CategorySides, Active: true},
		{ID: "sides-6", Name: "Maionese", Category: models.CategorySides, Active: true},
		{ID: "sides-7", Name: "Cenoura", Category: models.CategorySides, Active: true},
		{ID: "sides-8", Name: "Abobrinha", Category: models.CategorySides, Active: true},
		{ID: "sides-9", Name: "Abobrinha com Milho", Category: models.CategorySides, Active: true},
		{ID: "sides-10", Name: "Abóbora Kabotiá", Category: models.CategorySides, Active: true},
		{ID: "sides-11", Name: "Chuchu", Category: models.CategorySides, Active: true},
		{ID: "sides-12", Name: "Chuchu com Milho", Category: models.CategorySides, Active: true},
		{ID: "sides-13", Name: "Beterraba", Category: models.CategorySides, Active: true},
		{ID: "sides-14", Name: "Couve-flor", Category: models.CategorySides, Active: true},
		{ID: "sides-15", Name: "Brócolis", Category: models.CategorySides, Active: true},
		{ID: "sides-16", Name: "Farofa", Category: models.CategorySides, Active: true},
		{ID: "sides-17", Name: "Farofa de Cenoura", Category: models.CategorySides, Active: true},
		{ID: "sides-18", Name: "Farofa de Jiló", Category: models.CategorySides, Active: true},
		{ID: "sides-19", Name: "Batata Palha", Category: models.CategorySides, Active: true},
		{ID: "sides-20", Name: "Purê de Batata", Category: models.CategorySides, Active: true},
		{ID: "sides-21", Name: "Batata na Manteiga", Category: models.CategorySides, Active: true},
		{ID: "sides-22", Name: "Quiabo", Category: models.CategorySides, Active: true},
		{ID: "sides-23", Name: "Jiló", Category: models.CategorySides, Active: true},
		{ID: "sides-24", Name: "Couve", Category: models.CategorySides, Active: true},
		{ID: "sides-25", Name: "Batata Assada", Category: models.CategorySides, Active: true},
		{ID: "sides-26", Name: "Repolho com Bacon", Category: models.CategorySides, Active: true},
		{ID: "sides-27", Name: "Mandioca Frita", Category: models.CategorySides, Active: true},

		{ID: "salad-1", Name: "Salada de Alface e Tomate", Category: models.CategorySalads, Active: true},
		{ID: "salad-2", Name: "Salada de Alface, Repolho e Tomate", Category: models.CategorySalads, Active: true},
	}
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
