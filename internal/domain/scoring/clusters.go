package scoring

import "strings"

// DefaultFamilyAffinity scores a course family tag.
func DefaultFamilyAffinity() map[string]float64 {
	return map[string]float64{"CS": 1.0, "MA": 0.5, "FG": 0.1, "ET": 0.3, "ID": 0.3, "CB": 0.2}
}

// DefaultClusterScores scores each difficulty cluster.
func DefaultClusterScores() map[int]float64 {
	return map[int]float64{0: 8, 1: 10, 2: 1, 3: 7, 4: 3, 5: 10, 6: 9, 7: 5}
}

// DefaultClusters lists the course names belonging to each difficulty cluster.
func DefaultClusters() map[int][]string {
	return map[int][]string{
		0: {
			"COMPUTACION GRAFICA", "COMPUTACION MOLECULAR BIOLOGICA", "INTELIGENCIA ARTIFICIAL",
			"LENGUAJES DE PROGRAMACION", "ROBOTICA", "SISTEMAS DE INFORMACION",
			"TOPICOS AVANZADOS EN INGENIERIA DE SOFTWARE", "TOPICOS EN COMPUTACION GRAFICA",
		},
		1: {
			"ALGEBRA ABSTRACTA", "ALGORITMOS Y ESTRUCTURAS DE DATOS", "CALCULO I", "CALCULO II",
			"CIENCIA DE LA COMPUTACION I", "CIENCIA DE LA COMPUTACION II", "ESTRUCTURAS DISCRETAS I",
			"ESTRUCTURAS DISCRETAS II", "MATEMATICA I", "MATEMATICA II", "PROGRAMACION DE VIDEO JUEGOS",
			"TEORIA DE LA COMPUTACION",
		},
		2: {
			"APRECIACION ARTISTICA", "APRECIACION MUSICAL", "INTRODUCCION A LA VIDA UNIVERSITARIA",
			"LIDERAZGO", "MORAL", "ORATORIA", "PERSONA, MATRIMONIO Y FAMILIA", "TEATRO", "TEOLOGIA",
		},
		3: {
			"ANALISIS DE LA REALIDAD PERUANA", "BASES DE DATOS II", "CLOUD COMPUTING",
			"INGENIERIA DE SOFTWARE III", "INTERACCION HUMANO COMPUTADOR",
			"METODOLOGIA DE LA INVESTIGACION EN COMPUTACION", "REDES Y COMUNICACION",
		},
		4: {
			"BIG DATA", "COMPUTACION EN LA SOCIEDAD", "ENSENANZA SOCIAL DE LA IGLESIA", "ETICA PROFESIONAL",
			"FORMACION DE EMPRESAS DE BASE TECNOLOGICA I", "FORMACION DE EMPRESAS DE BASE TECNOLOGICA II",
			"HISTORIA DE LA CIENCIA Y TECNOLOGIA", "HISTORIA DE LA CULTURA", "INGLES TECNICO PROFESIONAL",
		},
		5: {
			"ANALISIS Y DISENO DE ALGORITMOS", "BASES DE DATOS I", "COMPILADORES",
			"COMPUTACION PARALELA Y DISTRIBUIDA", "ESTADISTICA Y PROBABILIDADES",
			"ESTRUCTURAS DE DATOS AVANZADAS", "FISICA COMPUTACIONAL", "INGENIERIA DE SOFTWARE I",
			"INGENIERIA DE SOFTWARE II", "MATEMATICA APLICADA A LA COMPUTACION", "PROGRAMACION COMPETITIVA",
			"SEGURIDAD EN COMPUTACION", "SISTEMAS OPERATIVOS", "TOPICOS EN INTELIGENCIA ARTIFICIAL",
		},
		6: {
			"ANALISIS NUMERICO", "ANTROPOLOGIA FILOSOFICA Y TEOLOGICA", "APRECIACION LITERARIA",
			"ARQUITECTURA DE COMPUTADORES", "COMUNICACION", "DESARROLLO BASADO EN PLATAFORMAS",
			"INTRODUCCION A LA FILOSIA", "INTRODUCCION DE CIENCIA DE LA COMPUTACION", "METODOLOGIA DEL ESTUDIO",
		},
		7: {"PROYECTO FINAL DE CARRERA I", "PROYECTO FINAL DE CARRERA II", "PROYECTO FINAL DE CARRERA III"},
	}
}

// clusterIndex maps normalized course names to their cluster id.
func clusterIndex(clusters map[int][]string) map[string]int {
	idx := make(map[string]int)
	for id, names := range clusters {
		for _, n := range names {
			idx[normalizeName(n)] = id
		}
	}
	return idx
}

func normalizeName(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }
