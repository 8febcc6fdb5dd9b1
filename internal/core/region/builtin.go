package region

var builtinCountry = Region{Name: "Brasil", Aliases: []string{"Brazil"}}

// builtinRegions are the five IBGE macro-regions.
var builtinRegions = []Region{
	{
		Name:    "Centro-Oeste",
		Aliases: []string{"Central-West", "Centro Oeste"},
		States: []State{
			{Name: "Distrito Federal", Code: "DF"},
			{Name: "Goiás", Code: "GO"},
			{Name: "Mato Grosso", Code: "MT"},
			{Name: "Mato Grosso do Sul", Code: "MS"},
		},
	},
	{
		Name:    "Nordeste",
		Aliases: []string{"Northeast"},
		States: []State{
			{Name: "Alagoas", Code: "AL"},
			{Name: "Bahia", Code: "BA"},
			{Name: "Ceará", Code: "CE"},
			{Name: "Maranhão", Code: "MA"},
			{Name: "Paraíba", Code: "PB"},
			{Name: "Pernambuco", Code: "PE"},
			{Name: "Piauí", Code: "PI"},
			{Name: "Rio Grande do Norte", Code: "RN"},
			{Name: "Sergipe", Code: "SE"},
		},
	},
	{
		Name:    "Norte",
		Aliases: []string{"North"},
		States: []State{
			{Name: "Acre", Code: "AC"},
			{Name: "Amapá", Code: "AP"},
			{Name: "Amazonas", Code: "AM"},
			{Name: "Pará", Code: "PA"},
			{Name: "Rondônia", Code: "RO"},
			{Name: "Roraima", Code: "RR"},
			{Name: "Tocantins", Code: "TO"},
		},
	},
	{
		Name:    "Sudeste",
		Aliases: []string{"Southeast"},
		States: []State{
			{Name: "Espírito Santo", Code: "ES"},
			{Name: "Minas Gerais", Code: "MG"},
			{Name: "Rio de Janeiro", Code: "RJ"},
			{Name: "São Paulo", Code: "SP"},
		},
	},
	{
		Name:    "Sul",
		Aliases: []string{"South"},
		States: []State{
			{Name: "Paraná", Code: "PR"},
			{Name: "Rio Grande do Sul", Code: "RS"},
			{Name: "Santa Catarina", Code: "SC"},
		},
	},
}

// Default returns the builtin Brazilian region table.
func Default() *Table {
	t, err := New(builtinCountry, builtinRegions, "builtin")
	if err != nil {
		panic("region: invalid builtin table: " + err.Error())
	}
	return t
}
