package team

// Catalog returns the full 32-team cup draw, groups A through H.
func Catalog() []Team {
	return []Team{
		{ID: "1", Name: "Catar", Flag: "🇶🇦", Group: "A"},
		{ID: "2", Name: "Equador", Flag: "🇪🇨", Group: "A"},
		{ID: "3", Name: "Senegal", Flag: "🇸🇳", Group: "A"},
		{ID: "4", Name: "Holanda", Flag: "🇳🇱", Group: "A"},

		{ID: "5", Name: "Inglaterra", Flag: "🏴󠁧󠁢󠁥󠁮󠁧󠁿", Group: "B"},
		{ID: "6", Name: "Irã", Flag: "🇮🇷", Group: "B"},
		{ID: "7", Name: "Estados Unidos", Flag: "🇺🇸", Group: "B"},
		{ID: "8", Name: "País de Gales", Flag: "🏴󠁧󠁢󠁷󠁬󠁳󠁿", Group: "B"},

		{ID: "9", Name: "Argentina", Flag: "🇦🇷", Group: "C"},
		{ID: "10", Name: "Arábia Saudita", Flag: "🇸🇦", Group: "C"},
		{ID: "11", Name: "México", Flag: "🇲🇽", Group: "C"},
		{ID: "12", Name: "Polônia", Flag: "🇵🇱", Group: "C"},

		{ID: "13", Name: "França", Flag: "🇫🇷", Group: "D"},
		{ID: "14", Name: "Austrália", Flag: "🇦🇺", Group: "D"},
		{ID: "15", Name: "Dinamarca", Flag: "🇩🇰", Group: "D"},
		{ID: "16", Name: "Tunísia", Flag: "🇹🇳", Group: "D"},

		{ID: "17", Name: "Espanha", Flag: "🇪🇸", Group: "E"},
		{ID: "18", Name: "Costa Rica", Flag: "🇨🇷", Group: "E"},
		{ID: "19", Name: "Alemanha", Flag: "🇩🇪", Group: "E"},
		{ID: "20", Name: "Japão", Flag: "🇯🇵", Group: "E"},

		{ID: "21", Name: "Bélgica", Flag: "🇧🇪", Group: "F"},
		{ID: "22", Name: "Canadá", Flag: "🇨🇦", Group: "F"},
		{ID: "23", Name: "Marrocos", Flag: "🇲🇦", Group: "F"},
		{ID: "24", Name: "Croácia", Flag: "🇭🇷", Group: "F"},

		{ID: "25", Name: "Brasil", Flag: "🇧🇷", Group: "G"},
		{ID: "26", Name: "Sérvia", Flag: "🇷🇸", Group: "G"},
		{ID: "27", Name: "Suíça", Flag: "🇨🇭", Group: "G"},
		{ID: "28", Name: "Camarões", Flag: "🇨🇲", Group: "G"},

		{ID: "29", Name: "Portugal", Flag: "🇵🇹", Group: "H"},
		{ID: "30", Name: "Gana", Flag: "🇬🇭", Group: "H"},
		{ID: "31", Name: "Uruguai", Flag: "🇺🇾", Group: "H"},
		{ID: "32", Name: "Coreia do Sul", Flag: "🇰🇷", Group: "H"},
	}
}
