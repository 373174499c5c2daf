package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"ragkb/internal/domain"
)

// DocumentSaver runs the full ingestion pipeline for one document.
type DocumentSaver interface {
	SaveDocument(ctx context.Context, doc *domain.Document) error
}

type item struct {
	title   string
	content string
}

type dataset struct {
	category    string
	description string
	items       []item
}

// Run loads the default knowledge sets into the store. It is idempotent:
// existing categories and documents (matched by title) are left alone, so it
// can be re-run safely. Returns the number of documents created.
func Run(ctx context.Context, store domain.Store, saver DocumentSaver, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	created := 0
	for _, ds := range datasets {
		n, err := seedDataset(ctx, store, saver, logger, ds)
		created += n
		if err != nil {
			return created, err
		}
	}
	return created, nil
}

func seedDataset(ctx context.Context, store domain.Store, saver DocumentSaver, logger *zap.Logger, ds dataset) (int, error) {
	cat, err := store.GetCategoryByName(ctx, ds.category)
	if errors.Is(err, domain.ErrNotFound) {
		cat = &domain.Category{Name: ds.category, Description: ds.description}
		if err := store.SaveCategory(ctx, cat); err != nil {
			return 0, fmt.Errorf("creating category %q: %w", ds.category, err)
		}
		logger.Info("category created", zap.String("name", cat.Name))
	} else if err != nil {
		return 0, fmt.Errorf("looking up category %q: %w", ds.category, err)
	}

	created := 0
	for _, it := range ds.items {
		_, err := store.GetDocumentByTitle(ctx, it.title)
		if err == nil {
			logger.Debug("document exists, skipping", zap.String("title", it.title))
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return created, fmt.Errorf("looking up %q: %w", it.title, err)
		}
		doc := &domain.Document{
			Title:      it.title,
			Content:    strings.TrimSpace(it.content),
			CategoryID: cat.ID,
			Active:     true,
		}
		if err := saver.SaveDocument(ctx, doc); err != nil {
			return created, fmt.Errorf("seeding %q: %w", it.title, err)
		}
		created++
		logger.Info("document seeded", zap.String("title", it.title))
	}
	return created, nil
}

var datasets = []dataset{
	{
		category:    "Fizika",
		description: "Általános fizikai jelenségek, fogalmak és elméletek.",
		items: []item{
			{"Newton törvényei", "A klasszikus mechanika három alapvető törvénye, amelyek a mozgást írják le."},
			{"Relativitáselmélet", "Einstein elmélete a téridőről, amely a speciális és általános relativitást foglalja magába."},
			{"Fénysebesség", "A vákuumban terjedő fény sebessége: 299 792 458 m/s."},
			{"Gravitáció", "A tömeggel rendelkező objektumok közötti vonzóerő, amely Einstein szerint a téridő görbülete."},
			{"Kvantummechanika", "A mikroszkopikus részecskék viselkedését leíró fizikai elmélet."},
			{"Fekete lyukak", "Olyan objektumok, amelyek gravitációs tere olyan erős, hogy még a fény sem képes elhagyni."},
			{"Atommodellek", "Az atom felépítését leíró különböző modellek, például Bohr- és kvantummechanikai modellek."},
			{"Foton", "A fény és más elektromágneses hullámok alapvető részecskéje."},
			{"Hullám-részecske kettősség", "A kvantummechanika egyik alapelve: a részecskék hullámként és részecskeként is viselkednek."},
			{"Standard Modell", "A részecskefizika jelenleg elfogadott elméleti keretrendszere."},
		},
	},
	{
		category:    "Földrajz",
		description: "Középiskolai és általános földrajzi jelenségek, földtani folyamatok, éghajlati rendszerek és kontinensek részletes leírása.",
		items: []item{
			{
				"A kőzetek fő típusai",
				`A Föld szilárd kérge különböző kőzetekből áll, amelyek három nagy csoportba sorolhatók:
üledékes, magmás és metamorf kőzetek.

**Üledékes kőzetek** akkor keletkeznek, amikor apró szemcsék, törmelékek vagy szerves maradványok rétegekben felhalmozódnak,
majd hosszú idő alatt összecementálódnak. Ilyen például a homokkő, a mészkő vagy a konglomerátum.
Ezek nagyon gyakran fosszíliákat tartalmaznak, ezért fontos forrásai a földtörténeti kutatásoknak.

**Magmás kőzetek** a Föld mélyéből származó olvadt kőzetanyag, a magma kihűlésével keletkeznek.
A lassú lehűlés esetén nagy kristályok alakulnak ki (gránit), míg a gyors lehűlés apró kristályokat eredményez
(bazalt). A magmás kőzetek a Föld kérgének egyik alapvető alkotói.

**Metamorf kőzetek** akkor jönnek létre, amikor meglévő kőzetek nagy nyomás vagy hő hatására átalakulnak.
A palásodás, valamint az ásványi összetevők átrendeződése is jellemző lehet. Ide tartozik például a gneisz és a márvány.

A kőzetek vizsgálata fontos a földtani folyamatok megértésében és a természeti erőforrások feltárásában.`,
			},
			{
				"A vulkánok működése",
				`A vulkánok olyan földtani képződmények, ahol a felszín alatti magma a felszínre jut.
A vulkánkitörés folyamata összetett: a Föld mélyén található magma a benne oldott gázok miatt nyomást gyakorol,
és ha megfelelő repedés vagy gyenge zóna adódik, a felszín felé tör.

A vulkánoknak több típusa létezik: pajzsvulkánok, rétegvulkánok és hasadékvulkánok.
A pajzsvulkánok (például Hawaii) alacsony viszkozitású lávát produkálnak, ezért széles, lapos formájuk van.
A rétegvulkánok (mint a Vezúv) robbanásos kitöréseik miatt veszélyesek, mivel a magas viszkozitású magma
gázcsapdákat képezhet, amelyek hirtelen, erőteljes robbanásokhoz vezetnek.

A vulkáni tevékenység alakítja a felszínt, termékeny talajt hoz létre, ugyanakkor komoly veszélyt jelenthet
a lakosságra, például pyroklasztikus áramlások vagy lávafolyások révén.`,
			},
			{
				"Éghajlati övezetek",
				`A Föld éghajlata a napsugárzás eloszlásának köszönhetően több nagy övezetre osztható.
Az éghajlati övezetek meghatározásában a földrajzi szélesség, a hőmérséklet és a csapadékeloszlás játszik kulcsfontosságú szerepet.

**Forró övezet**: Az Egyenlítő környékén található, egész évben magas hőmérséklet jellemzi.
Ide tartoznak az esőerdők, a szavannák és az egyenlítői monszun területek.

**Mérsékelt övezet**: Két részre osztható: a meleg- és a hideg mérsékelt övezetre.
A négy évszak jellemző, és itt található a legtöbb lakott terület. Magyarország is a mérsékelt övezet része.

**Hideg övezet**: A sarkvidékeken helyezkedik el, ahol az év nagy részében alacsony hőmérséklet és kevés csapadék van.
A tundra és a jégsivatag ezekre a területekre jellemző.

Az éghajlati övezetek ismerete fontos a mezőgazdaság, a környezetvédelem és a klímaváltozás megértése szempontjából.`,
			},
			{
				"Európa domborzata",
				`Európa rendkívül változatos domborzattal rendelkezik, amely jelentős hatással van az éghajlatra,
a népesség eloszlására és a gazdasági tevékenységekre.

A kontinens északi részén találhatók a Skandináv-hegység ősi, lekopott vonulatai.
A középső területek túlnyomórészt alföldiek, mint a Német-alföld vagy a Lengyel-alföld.
A domborzat déli irányban egyre magasabb: itt húzódnak Európa legnagyobb hegységei,
például az Alpok, a Pireneusok, a Kárpátok és a Dinári-hegység.

Közép-Európában a Kárpát-medence jellegzetes földrajzi tájegység, amelyet a Kárpátok íve ölel körül.
Magyarország nagy része alföldi jellegű, de megtalálhatók dombságok és középhegységek is, mint a Mátra és a Bükk.

Európa domborzata hozzájárul a kulturális sokszínűséghez, az eltérő gazdasági régiók kialakulásához és a történelmi fejlődéshez.`,
			},
			{
				"A víz körforgása",
				`A víz körforgása a Föld egyik legfontosabb természeti folyamata, amely a hidroszféra, a légkör és a litoszféra között zajlik.
A körforgás a napsugárzás energiáján alapul.

A folyamat fő lépései:
1. **Párolgás** – a víz a tengerekből, tavakból és talajból a légkörbe kerül.
2. **Kondenzáció** – a lehűlt vízgőzből felhők alakulnak ki.
3. **Csapadék** – a felhőkben lévő vízcseppek vagy jégkristályok lehullanak eső, hó vagy jégeső formájában.
4. **Lefolyás és beszivárgás** – a víz visszakerül a felszín alatti és felszíni vizekbe.

A víz körforgása szabályozza a Föld éghajlatát, támogatja az élővilág fennmaradását,
és kulcsfontosságú az emberi tevékenységek – például mezőgazdaság, ivóvízellátás – szempontjából.`,
			},
		},
	},
	{
		category:    "Irodalom",
		description: "Klasszikus magyar irodalmi művek, szerzői életrajzok, műelemzések és műfaji ismertetők részletes magyarázatokkal.",
		items: []item{
			{
				"Arany János élete és munkássága",
				`Arany János a 19. századi magyar irodalom egyik legkiemelkedőbb alakja, a ballada műfajának mestere,
Petőfi Sándor barátja és a magyar nyelv művészi megformálásának egyik legfontosabb alakja.
Nagyszalontán született 1817-ben, szerény körülmények között. Tanulmányait részben önképzéssel végezte,
mivel családja nem tudta folyamatosan támogatni.

Arany első nagy sikere a Toldi megjelenésével jött 1846-ban, amelyet Petőfi fedezett fel és támogatott.
A Toldi trilógia máig a magyar epikus költészet egyik legfontosabb alkotása. Arany balladái, például a Szondi két apródja,
A walesi bárdok vagy az Ágnes asszony, komplex szerkezetükkel, lélektani mélységükkel és tragikus hangulatukkal tűnnek ki.

Későbbi éveiben a Magyar Tudományos Akadémia főtitkára lett, és jelentős szerepet játszott a magyar irodalmi élet irányításában.
Munkásságát a népköltészet iránti érdeklődés, a klasszicista formafegyelem és a romantikus érzésvilág ötvöződése jellemzi.`,
			},
			{
				"Petőfi Sándor – János vitéz összefoglaló",
				`A János vitéz Petőfi Sándor egyik legismertebb elbeszélő költeménye, amely 1845-ben jelent meg.
A mű egy egyszerű juhászfiú, Kukorica Jancsi kalandjait mutatja be, aki szerelmét, Iluskát elveszíti,
majd hősies tettek révén János vitézzé válik.

A történet bejárja a magyar falusi világot, a francia király udvarát, a sötét Óriások Földjét,
és végül eljut a Tündérek Országába, ahol János vitéz újra találkozik Iluskával.
A mű keveri a népmesei elemeket és a romantikus kalandmotívumokat, könnyen érthető nyelvezettel és élénk képekkel.

A János vitéz sokak szerint a magyar nemzeti identitás egyik fontos irodalmi alappillére,
mivel a hűséget, a bátorságot, a szerelem erejét és az önfeláldozást középpontba állítja.`,
			},
			{
				"A ballada műfaji jellemzői",
				`A ballada a líra, az epika és a dráma műfajainak határán elhelyezkedő, tömör, sűrített kifejezésmódú műfaj.
Legfőbb sajátossága, hogy egy tragikus, konfliktusos történetet mesél el, gyakran párbeszédekkel és gyors jelenetváltásokkal.
A cselekmény előrehaladása sokszor szaggatott, a kihagyásos szerkesztés miatt a történet bizonyos részei kimaradnak,
és az olvasónak kell kikövetkeztetnie az összefüggéseket.

A balladák hangulata általában komor, gyakran moralizáló vagy történelmi jellegű.
Jellemző a refrén, a balladai homály és a végzet elkerülhetetlenségének érzete.
A magyar irodalomban Arany János balladái számítanak a műfaj csúcsának, például: Ágnes asszony, V. László, A walesi bárdok.

A ballada műfaja kitűnő példa arra, hogyan lehet egy rövid terjedelemben rendkívül erős drámai hatást elérni.`,
			},
			{
				"Jókai Mór – A kőszívű ember fiai",
				`A kőszívű ember fiai Jókai Mór egyik legismertebb romantikus történelmi regénye,
amely az 1848–49-es forradalom és szabadságharc idején játszódik.
A történet középpontjában a Baradlay család áll, különösen a három fiú: Ödön, Richárd és Jenő.

A mű a romantika jellegzetes jegyeit viseli: érzelmes jelenetek, eszményített hősök,
drámai fordulatok és történelmi háttér. Jókai nagy hangsúlyt fektet a családi szeretetre,
a hazaszeretet eszméjére és az önfeláldozásra.

A regény sok szereplőt mozgat, és párhuzamos cselekményszálai jól tükrözik a magyar társadalom sokszínűségét a forradalom idején.
A mű máig az iskolai tananyag része, és a magyar romantikus irodalom egyik legfontosabb darabja.`,
			},
			{
				"A romantika irodalmi irányzat jellemzői",
				`A romantika az irodalomtörténet egyik meghatározó korszaka, amely a 18–19. században terjedt el Európában,
és erősen hatott a magyar irodalomra is. A romantika középpontjában az egyén, az érzelmek és a szabadságvágy áll.

A művekben hangsúlyos az erős érzelmi töltet, a hősies alakok, a természet misztikuma,
az idealizálás és a nemzeti érzelmek megjelenítése. A romantikus hős gyakran kívülálló,
aki a társadalmi normákkal szembekerülve küzd igazságáért.

Magyarországon a romantika kiemelkedő alakjai: Petőfi Sándor, Arany János, Jókai Mór és Vörösmarty Mihály.
A korszak művei a mai napig a magyar kulturális identitás fontos alappillérei.`,
			},
		},
	},
}
